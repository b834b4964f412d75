//go:build fairrw_disable_padding

package opt

// Pad_ is empty: padding is force-disabled via the fairrw_disable_padding
// build tag.
type Pad_ struct{}
