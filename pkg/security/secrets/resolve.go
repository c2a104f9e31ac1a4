package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// ResolveConfig returns a copy of cfg with secret references resolved in
// the fields that carry credentials: candidate endpoint URLs (provider API
// keys) and the storage keys. cfg itself is not modified, so the raw form
// stays in the config singleton and never reaches logs resolved.
func ResolveConfig(ctx context.Context, m *Manager, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	var errs []error

	resolveList := func(field string, in []string) []string {
		list := make([]string, len(in))
		for i, raw := range in {
			v, err := m.Resolve(ctx, raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", field, i, err))
			}
			list[i] = v
		}
		return list
	}
	resolveOne := func(field string, dst *string) {
		v, err := m.Resolve(ctx, *dst)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		*dst = v
	}

	out.Networks.Devnet.Candidates = resolveList("networks.devnet.candidates", cfg.Networks.Devnet.Candidates)
	out.Networks.Mainnet.Candidates = resolveList("networks.mainnet.candidates", cfg.Networks.Mainnet.Candidates)
	resolveOne("storage.access_key", &out.Storage.AccessKey)
	resolveOne("storage.secret_key", &out.Storage.SecretKey)
	resolveOne("storage.bucket", &out.Storage.Bucket)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &out, nil
}
