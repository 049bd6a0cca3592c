// File: internal/plugin/hooks.go
package plugin

import "context"

// BeforeSaver is implemented by records that adjust themselves before their
// INSERT is built. An error aborts the save.
type BeforeSaver interface {
	BeforeSave(ctx context.Context) error
}

// AfterRetriever is implemented by records that post-process themselves once
// every field has been hydrated.
type AfterRetriever interface {
	AfterRetrieve(ctx context.Context) error
}

// BeforeSave calls the hook if rec implements it.
func BeforeSave(ctx context.Context, rec any) error {
	if h, ok := rec.(BeforeSaver); ok {
		return h.BeforeSave(ctx)
	}
	return nil
}

// AfterRetrieve calls the hook if rec implements it.
func AfterRetrieve(ctx context.Context, rec any) error {
	if h, ok := rec.(AfterRetriever); ok {
		return h.AfterRetrieve(ctx)
	}
	return nil
}
