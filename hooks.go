package cacheman

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A read (Get, GetMany member, Wrap, Pull) finished as hit or miss.
	Lookup(namespace string, hit bool)

	// Wrap ran its loader after a miss.
	LoaderCalled(namespace string)

	// An unreadable entry was deleted on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Engine returned ok=false on Set (backpressure/admission).
	EngineSetRejected(storageKey string)

	// A background write of Wrap ("set") or Pull ("del") failed.
	BackgroundWriteFailed(op, storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Lookup(string, bool)                         {}
func (NopHooks) LoaderCalled(string)                         {}
func (NopHooks) SelfHeal(string, string)                     {}
func (NopHooks) EngineSetRejected(string)                    {}
func (NopHooks) BackgroundWriteFailed(string, string, error) {}
