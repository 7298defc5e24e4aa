package address

import (
	"credledger/pkg/domain"
)

// Derived is a record address together with its canonical bump.
type Derived struct {
	Address domain.Pubkey
	Bump    uint8
}

// Deriver computes the addresses of every ledger record for one program.
type Deriver struct {
	programID domain.Pubkey
}

func NewDeriver(programID domain.Pubkey) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() domain.Pubkey { return d.programID }

func (d *Deriver) Config() (Derived, error) {
	return d.find(ConfigSeeds())
}

func (d *Deriver) Registry() (Derived, error) {
	return d.find(RegistrySeeds())
}

func (d *Deriver) Issuer(authority domain.Pubkey) (Derived, error) {
	return d.find(IssuerSeeds(authority))
}

// Credential derives the per-(holder, issuer) credential address. issuerRecord
// is the issuer's record address, not its authority key.
func (d *Deriver) Credential(holder, issuerRecord domain.Pubkey) (Derived, error) {
	return d.find(CredentialSeeds(holder, issuerRecord))
}

// Verify checks a caller-supplied address and bump against seeds.
func (d *Deriver) Verify(want domain.Pubkey, bump uint8, seeds [][]byte) error {
	return Verify(d.programID, want, bump, seeds)
}

func (d *Deriver) find(seeds [][]byte) (Derived, error) {
	addr, bump, err := Find(d.programID, seeds)
	if err != nil {
		return Derived{}, err
	}
	return Derived{Address: addr, Bump: bump}, nil
}

func ConfigSeeds() [][]byte {
	return [][]byte{[]byte(TagConfig)}
}

func RegistrySeeds() [][]byte {
	return [][]byte{[]byte(TagRegistry)}
}

func IssuerSeeds(authority domain.Pubkey) [][]byte {
	return [][]byte{[]byte(TagIssuer), authority.Bytes()}
}

func CredentialSeeds(holder, issuerRecord domain.Pubkey) [][]byte {
	return [][]byte{[]byte(TagCredential), holder.Bytes(), issuerRecord.Bytes()}
}
