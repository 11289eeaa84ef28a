// Package registry records uploaded recordings in the relational store so
// downstream processors can find them. It only ever inserts.
package registry

import (
	"context"
	"errors"

	"github.com/dharsanguruparan/watchme-vault/internal/model"
)

// ErrDuplicate is returned (wrapped) when a recording with the same device id
// and recorded-at value is already registered.
var ErrDuplicate = errors.New("recording already registered")

// Registrar inserts recording metadata.
type Registrar interface {
	Register(ctx context.Context, rec model.Recording) error
	Configured() bool
}
