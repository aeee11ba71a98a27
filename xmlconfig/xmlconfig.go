// Package xmlconfig parses the declarative <loggers> configuration
// schema (§6) into an evtspec.Config. Grounded on
// other_examples/b47e5001_ocochard-cmonit (internal/parser/xml.go): plain
// encoding/xml struct tags over a hand-rolled tree, the only XML-parsing
// style actually exercised anywhere in the retrieved pack (no repo
// directly imports a third-party XML library; antchfx/xmlquery appears
// only as an indirect transitive dependency of DataDog-datadog-agent,
// with no call site to learn a usage idiom from).
package xmlconfig

import (
	"encoding/xml"
	"os"
	"strconv"
	"strings"

	"github.com/matgreaves/evtrace/evtid"
	"github.com/matgreaves/evtrace/evtspec"
)

type loggersDoc struct {
	XMLName    xml.Name    `xml:"loggers"`
	ETWLogging *etwLogging `xml:"etwlogging"`
	Logs       []logElem   `xml:"log"`
}

type etwLogging struct {
	Enabled bool `xml:"enabled,attr"`
}

type logElem struct {
	Name             string       `xml:"name,attr"`
	Type             string       `xml:"type,attr"`
	Directory        string       `xml:"directory,attr"`
	BufferSizeMB     string       `xml:"bufferSizeMB,attr"`
	RotationInterval string       `xml:"rotationInterval,attr"`
	FilenameTemplate string       `xml:"filenameTemplate,attr"`
	TimestampLocal   string       `xml:"timestampLocal,attr"`
	Sources          []sourceElem `xml:"source"`
	Filters          []filterElem `xml:"filter"`
}

type sourceElem struct {
	Name            string `xml:"name,attr"`
	ProviderID      string `xml:"providerID,attr"`
	MinimumSeverity string `xml:"minimumSeverity,attr"`
	Keywords        string `xml:"keywords,attr"`
}

type filterElem struct {
	Pattern string `xml:",chardata"`
}

// kindAliases maps the schema's `type` attribute spellings to the
// canonical evtspec.Kind values, per §6.
var kindAliases = map[string]evtspec.Kind{
	"":        evtspec.KindText,
	"text":    evtspec.KindText,
	"txt":     evtspec.KindText,
	"etl":     evtspec.KindTrace,
	"etw":     evtspec.KindTrace,
	"console": evtspec.KindConsole,
	"cons":    evtspec.KindConsole,
	"con":     evtspec.KindConsole,
}

// Load reads and parses the declarative configuration file at path,
// satisfying manager.Loader so it can be registered directly with
// Manager.WatchConfigFile.
func Load(path string) (*evtspec.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, evtspec.NewError(evtspec.NotFound, "xmlconfig.Load", "read "+path, err)
	}
	return Parse(data)
}

// Parse decodes XML bytes in the <loggers> schema into an evtspec.Config.
func Parse(data []byte) (*evtspec.Config, error) {
	const op = "xmlconfig.Parse"
	var doc loggersDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, evtspec.NewError(evtspec.InvalidConfiguration, op, "malformed loggers document", err)
	}

	cfg := &evtspec.Config{AllowBinaryLogging: evtspec.BinaryLoggingUnspecified}
	if doc.ETWLogging != nil {
		if doc.ETWLogging.Enabled {
			cfg.AllowBinaryLogging = evtspec.BinaryLoggingEnabled
		} else {
			cfg.AllowBinaryLogging = evtspec.BinaryLoggingDisabled
		}
	}

	for _, le := range doc.Logs {
		lc, err := convertLog(le)
		if err != nil {
			return nil, err
		}
		cfg.Logs = append(cfg.Logs, *lc)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func convertLog(le logElem) (*evtspec.LogConfig, error) {
	const op = "xmlconfig.Parse"
	kind, ok := kindAliases[strings.ToLower(le.Type)]
	if !ok {
		return nil, evtspec.NewError(evtspec.InvalidConfiguration, op, "unknown log type "+le.Type, nil)
	}

	lc := &evtspec.LogConfig{
		Name:             le.Name,
		Kind:             kind,
		Directory:        le.Directory,
		FilenameTemplate: le.FilenameTemplate,
	}

	if le.TimestampLocal != "" {
		v, err := strconv.ParseBool(le.TimestampLocal)
		if err != nil {
			return nil, evtspec.NewError(evtspec.InvalidArgument, op, "invalid timestampLocal on log "+le.Name, err)
		}
		lc.TimestampLocal = v
	}
	if le.BufferSizeMB != "" {
		v, err := strconv.Atoi(le.BufferSizeMB)
		if err != nil {
			return nil, evtspec.NewError(evtspec.InvalidArgument, op, "invalid bufferSizeMB on log "+le.Name, err)
		}
		lc.BufferSizeMB = v
	}
	if le.RotationInterval != "" {
		v, err := strconv.Atoi(le.RotationInterval)
		if err != nil {
			return nil, evtspec.NewError(evtspec.InvalidArgument, op, "invalid rotationInterval on log "+le.Name, err)
		}
		lc.RotationInterval = v
	}

	if len(le.Sources) == 0 {
		return nil, evtspec.NewError(evtspec.InvalidConfiguration, op, "log "+le.Name+" has no source elements", nil)
	}
	for _, se := range le.Sources {
		sub, err := convertSource(le.Name, se)
		if err != nil {
			return nil, err
		}
		lc.Subscriptions = append(lc.Subscriptions, *sub)
	}

	seen := make(map[string]bool, len(le.Filters))
	for _, fe := range le.Filters {
		pattern := strings.TrimSpace(fe.Pattern)
		if pattern == "" {
			continue
		}
		if seen[pattern] {
			return nil, evtspec.NewError(evtspec.InvalidArgument, op, "duplicate filter on log "+le.Name+": "+pattern, nil)
		}
		seen[pattern] = true
		lc.Filters = append(lc.Filters, pattern)
	}

	return lc, nil
}

func convertSource(logName string, se sourceElem) (*evtspec.Subscription, error) {
	const op = "xmlconfig.Parse"
	sub := &evtspec.Subscription{
		ProviderName: se.Name,
		MinLevel:     evtspec.LevelVerbose,
	}
	if se.ProviderID != "" {
		id, err := evtid.Parse(se.ProviderID)
		if err != nil {
			return nil, evtspec.NewError(evtspec.InvalidArgument, op, "invalid providerID on log "+logName, err)
		}
		sub.ProviderID = id
	}
	if se.Name == "" && se.ProviderID == "" {
		return nil, evtspec.NewError(evtspec.InvalidConfiguration, op, "source on log "+logName+" identifies no provider", nil)
	}
	if se.MinimumSeverity != "" {
		lvl, ok := evtspec.ParseLevel(se.MinimumSeverity)
		if !ok {
			return nil, evtspec.NewError(evtspec.InvalidArgument, op, "invalid minimumSeverity on log "+logName, nil)
		}
		sub.MinLevel = lvl
	}
	if se.Keywords != "" {
		kw, err := parseKeywords(se.Keywords)
		if err != nil {
			return nil, evtspec.NewError(evtspec.InvalidArgument, op, "invalid keywords on log "+logName, err)
		}
		sub.Keywords = kw
	}
	return sub, nil
}

// parseKeywords accepts the declarative schema's hex spelling, with or
// without a "0x" prefix, per §6.
func parseKeywords(s string) (evtspec.Keywords, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, err
	}
	return evtspec.Keywords(v), nil
}
