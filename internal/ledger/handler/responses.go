package handler

import (
	"credledger/internal/ledger/address"
	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
)

type ConfigResponse struct {
	Address string `json:"address"`
	Admin   string `json:"admin"`
	Version uint8  `json:"version"`
	Bump    uint8  `json:"bump"`
}

type RegistryResponse struct {
	Address  string   `json:"address"`
	Admin    string   `json:"admin"`
	Issuers  []string `json:"issuers"`
	Count    uint8    `json:"count"`
	Capacity int      `json:"capacity"`
	Bump     uint8    `json:"bump"`
}

type IssuerResponse struct {
	Address           string `json:"address"`
	Authority         string `json:"authority"`
	Name              string `json:"name"`
	ZkPublicKeyX      string `json:"zk_public_key_x"`
	ZkPublicKeyY      string `json:"zk_public_key_y"`
	IsActive          bool   `json:"is_active"`
	RegisteredAt      int64  `json:"registered_at"`
	CredentialsIssued uint64 `json:"credentials_issued"`
	Bump              uint8  `json:"bump"`
}

type SignatureResponse struct {
	R8X string `json:"r8x"`
	R8Y string `json:"r8y"`
	S   string `json:"s"`
}

type CredentialResponse struct {
	Address        string            `json:"address"`
	Holder         string            `json:"holder"`
	Issuer         string            `json:"issuer"`
	CredentialHash string            `json:"credential_hash"`
	IssuedAt       int64             `json:"issued_at"`
	ExpiresAt      int64             `json:"expires_at"`
	Signature      SignatureResponse `json:"zk_signature"`
	IsRevoked      bool              `json:"is_revoked"`
	Bump           uint8             `json:"bump"`
}

type StatusResponse struct {
	Address   string `json:"address"`
	Status    string `json:"status"`
	ExpiresAt int64  `json:"expires_at"`
	CheckedAt int64  `json:"checked_at"`
}

// addressOf renders a derived address; derivation only fails on malformed
// seeds, which the handler never passes, so the empty string is not expected.
func addressOf(d address.Derived, err error) string {
	if err != nil {
		return ""
	}
	return d.Address.String()
}

func toConfigResponse(d *address.Deriver, cfg *models.ProgramConfig) *ConfigResponse {
	return &ConfigResponse{
		Address: addressOf(d.Config()),
		Admin:   cfg.Admin.String(),
		Version: cfg.Version,
		Bump:    cfg.Bump,
	}
}

func toRegistryResponse(d *address.Deriver, reg *models.IssuerRegistry) *RegistryResponse {
	return &RegistryResponse{
		Address:  addressOf(d.Registry()),
		Admin:    reg.Admin.String(),
		Issuers:  pubkeyStrings(reg.Members()),
		Count:    reg.Count,
		Capacity: models.RegistryCapacity,
		Bump:     reg.Bump,
	}
}

func toIssuerResponse(d *address.Deriver, issuer *models.IssuerAccount) *IssuerResponse {
	return &IssuerResponse{
		Address:           addressOf(d.Issuer(issuer.Authority)),
		Authority:         issuer.Authority.String(),
		Name:              issuer.Name,
		ZkPublicKeyX:      issuer.ZkPublicKeyX.String(),
		ZkPublicKeyY:      issuer.ZkPublicKeyY.String(),
		IsActive:          issuer.IsActive,
		RegisteredAt:      issuer.RegisteredAt,
		CredentialsIssued: issuer.CredentialsIssued,
		Bump:              issuer.Bump,
	}
}

func toCredentialResponse(d *address.Deriver, cred *models.UserCredential) *CredentialResponse {
	sig := cred.Signature()
	return &CredentialResponse{
		Address:        addressOf(d.Credential(cred.Holder, cred.Issuer)),
		Holder:         cred.Holder.String(),
		Issuer:         cred.Issuer.String(),
		CredentialHash: cred.CredentialHash.String(),
		IssuedAt:       cred.IssuedAt,
		ExpiresAt:      cred.ExpiresAt,
		Signature: SignatureResponse{
			R8X: sig.R8X.String(),
			R8Y: sig.R8Y.String(),
			S:   sig.S.String(),
		},
		IsRevoked: cred.IsRevoked,
		Bump:      cred.Bump,
	}
}

func toStatusResponse(view *models.CredentialStatusView) *StatusResponse {
	return &StatusResponse{
		Address:   view.Address.String(),
		Status:    string(view.Status),
		ExpiresAt: view.ExpiresAt,
		CheckedAt: view.CheckedAt,
	}
}

func pubkeyStrings(keys []domain.Pubkey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}
