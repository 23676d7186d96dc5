package keeper

import (
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Call is one item of a batch. It receives a context whose writes are kept
// only if it returns a nil error.
type Call func(ctx sdk.Context) ([]byte, error)

// CallResult is the outcome of one batch item.
type CallResult struct {
	Success    bool
	ReturnData []byte
	Err        error
}

// TryMulticall executes calls first to last. Each call runs in its own cache
// context: a failing call is discarded without unwinding earlier ones, and a
// later call sees the writes of every earlier successful call.
func TryMulticall(ctx sdk.Context, calls []Call) []CallResult {
	results := make([]CallResult, len(calls))
	for i, call := range calls {
		cacheCtx, writeCache := ctx.CacheContext()
		data, err := runCall(cacheCtx, call)
		if err != nil {
			results[i] = CallResult{Err: err}
			continue
		}
		writeCache()
		results[i] = CallResult{Success: true, ReturnData: data}
	}
	return results
}

// runCall turns a panicking call into a failed one. Running out of gas still
// aborts the whole batch.
func runCall(ctx sdk.Context, call Call) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(storetypes.ErrorOutOfGas); ok {
				panic(r)
			}
			err = fmt.Errorf("call panicked: %v", r)
		}
	}()
	return call(ctx)
}
