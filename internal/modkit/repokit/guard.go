package repokit

import (
	"context"
	"fmt"
)

type guarder interface {
	Guard(context.Context) error
}

// MustGuard pings every configured store and panics on failure, mains call it before serving
func MustGuard(ctx context.Context, st guarder) {
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
