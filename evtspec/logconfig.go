package evtspec

// Kind identifies a sink's underlying implementation.
type Kind string

const (
	// KindNone is the zero value; a Config may never contain it.
	KindNone    Kind = ""
	KindText    Kind = "text"
	KindTrace   Kind = "trace"
	KindMemory  Kind = "memory"
	KindConsole Kind = "console"
	KindNetwork Kind = "network"
)

const (
	minBufferSizeMB = 1
	maxBufferSizeMB = 1024

	minRotationIntervalS = 60
	maxRotationIntervalS = 86400
)

// LogConfig describes one sink to be created. It is a plain value with no
// frozen state of its own: the Manager never mutates a running sink in
// place. SetConfiguration replaces a changed LogConfig by destroying the old
// sink and creating a new one, and CreateMemorySink rejects an identity
// that is already instantiated with ConflictingState.
type LogConfig struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	Subscriptions []Subscription `json:"subscriptions"`
	Filters       []string       `json:"filters,omitempty"` // case-insensitive unanchored regex patterns

	BufferSizeMB int `json:"buffer_size_mb,omitempty"`

	Directory        string    `json:"directory,omitempty"`
	FilenameTemplate string    `json:"filename_template,omitempty"`
	TimestampLocal   bool      `json:"timestamp_local,omitempty"`
	RotationInterval int       `json:"rotation_interval_s,omitempty"` // seconds
	MaximumAge       *Duration `json:"maximum_age,omitempty"`
	MaximumSize      *int64    `json:"maximum_size,omitempty"` // bytes
	Archive          bool      `json:"archive,omitempty"`      // upload to cold storage before a retention sweep deletes

	Hostname  string `json:"hostname,omitempty"`
	Port      int    `json:"port,omitempty"`
	Transport string `json:"transport,omitempty"` // "http" (default), "grpc", or "redis"; KindNetwork only
}

// TransportHTTP, TransportGRPC and TransportRedis are the Transport values a
// KindNetwork sink accepts. The empty string is accepted too and means TransportHTTP.
const (
	TransportHTTP  = "http"
	TransportGRPC  = "grpc"
	TransportRedis = "redis"
)

// Duration is a small wrapper so LogConfig's JSON form stores durations as
// plain seconds (round-trips exactly). Its only field is Seconds; the file
// sink converts it to a time.Duration when it builds its retention policy.
type Duration struct {
	Seconds float64 `json:"seconds"`
}

// Clone returns a copy of c whose slice fields do not alias c's, safe to
// hand to the routing engine or store in a Manager's installed-config
// snapshot independent of the caller's copy.
func (c *LogConfig) Clone() *LogConfig {
	cp := *c
	cp.Subscriptions = append([]Subscription(nil), c.Subscriptions...)
	cp.Filters = append([]string(nil), c.Filters...)
	return &cp
}

// Validate runs the kind-conditional semantic checks from §6's capability
// matrix. It is side-effect-free: it never mutates c and never installs
// anything, so it can be called to implement "is_configuration_valid"
// without side effects.
func (c *LogConfig) Validate() error {
	const op = "LogConfig.Validate"
	if c.Name == "" && c.Kind != KindConsole {
		return NewError(InvalidArgument, op, "name must not be empty", nil)
	}
	switch c.Kind {
	case KindConsole:
		if c.Name != "" {
			return NewError(InvalidConfiguration, op, "console sinks must be unnamed", nil)
		}
	case KindNone:
		return NewError(InvalidConfiguration, op, "kind must not be None", nil)
	}

	if len(c.Subscriptions) == 0 {
		return NewError(InvalidConfiguration, op, "log "+c.Name+" has no subscriptions", nil)
	}
	for _, s := range c.Subscriptions {
		if err := s.Validate(); err != nil {
			return NewError(InvalidConfiguration, op, "invalid subscription in log "+c.Name, err)
		}
	}

	if err := validateFilters(c.Kind, c.Filters); err != nil {
		return err
	}

	fileBacked := c.Kind == KindText || c.Kind == KindTrace
	if fileBacked {
		if c.BufferSizeMB < minBufferSizeMB || c.BufferSizeMB > maxBufferSizeMB {
			return NewError(InvalidConfiguration, op, "bufferSizeMB out of range [1,1024]", nil)
		}
		if c.RotationInterval < minRotationIntervalS || c.RotationInterval > maxRotationIntervalS {
			return NewError(InvalidConfiguration, op, "rotationInterval out of range [60,86400]", nil)
		}
		if c.Hostname != "" || c.Port != 0 {
			return NewError(InvalidConfiguration, op, "hostname/port not valid on a file-backed sink", nil)
		}
		if c.Transport != "" {
			return NewError(InvalidConfiguration, op, "transport only valid on kind "+string(KindNetwork), nil)
		}
	} else {
		if c.Directory != "" || c.FilenameTemplate != "" || c.RotationInterval != 0 || c.MaximumAge != nil || c.MaximumSize != nil || c.Archive {
			return NewError(InvalidConfiguration, op, "file properties not valid on kind "+string(c.Kind), nil)
		}
	}

	if c.Kind == KindNetwork {
		if c.Hostname == "" || c.Port == 0 {
			return NewError(InvalidConfiguration, op, "network sinks require hostname and port", nil)
		}
		switch c.Transport {
		case "", TransportHTTP, TransportGRPC, TransportRedis:
		default:
			return NewError(InvalidConfiguration, op, "unknown transport "+c.Transport, nil)
		}
	} else if c.Kind != KindText && c.Kind != KindTrace {
		if c.Hostname != "" || c.Port != 0 {
			return NewError(InvalidConfiguration, op, "hostname/port only valid on kind "+string(KindNetwork), nil)
		}
		if c.Transport != "" {
			return NewError(InvalidConfiguration, op, "transport only valid on kind "+string(KindNetwork), nil)
		}
	}

	return nil
}

// validateFilters enforces the per-kind regex-filter capability (Trace
// carries no filter chain at all, per §4.2's capability matrix; Network
// has no text line to match against but still matches patterns against an
// event's string-valued parameters) and rejects duplicate patterns within
// a single sink.
func validateFilters(kind Kind, filters []string) error {
	const op = "LogConfig.Validate"
	if len(filters) == 0 {
		return nil
	}
	if kind == KindTrace {
		return NewError(InvalidConfiguration, op, "kind "+string(kind)+" does not support filters", nil)
	}
	seen := make(map[string]bool, len(filters))
	for _, f := range filters {
		if f == "" {
			return NewError(InvalidArgument, op, "empty filter pattern", nil)
		}
		if seen[f] {
			return NewError(InvalidArgument, op, "duplicate filter pattern: "+f, nil)
		}
		seen[f] = true
	}
	return nil
}

// SinkIdentity returns the (kind, name) pair the Manager uses as a sink's
// registry key.
func (c *LogConfig) SinkIdentity() (Kind, string) {
	return c.Kind, c.Name
}
