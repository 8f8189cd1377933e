package engine

import "github.com/devraj-nair/kvcask/internal/kverrors"

// SledEngine documents the seam an embedded-tree backend would occupy:
// it satisfies Engine so the server and pool code never special-case
// which backend they were handed, but it is not a real implementation.
// A genuine alternate backend (e.g. an embedded B-tree library) is left
// unbuilt — this stub only proves the contract's polymorphism is real,
// not decorative.
type SledEngine struct{}

func (SledEngine) Get(string) (string, bool, error) {
	return "", false, kverrors.New(kverrors.Unspecified, "sled engine is not implemented")
}

func (SledEngine) Set(string, string) error {
	return kverrors.New(kverrors.Unspecified, "sled engine is not implemented")
}

func (SledEngine) Remove(string) error {
	return kverrors.New(kverrors.Unspecified, "sled engine is not implemented")
}

func (SledEngine) Close() error { return nil }

var _ Engine = SledEngine{}
