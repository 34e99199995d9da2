package journal

import "fmt"

// Config selects and configures a journal backend.
type Config struct {
	Type string `json:"type" mapstructure:"type"` // "sqlite" or "postgres"; empty disables the journal
	Path string `json:"path" mapstructure:"path"` // sqlite file path (or ":memory:")
	DSN  string `json:"dsn" mapstructure:"dsn"`   // postgres DSN
}

// New builds the configured sink. A zero config returns (nil, nil): the
// journal is optional and callers treat a nil sink as disabled.
func New(c Config) (Sink, error) {
	switch c.Type {
	case "":
		return nil, nil
	case "sqlite":
		path := c.Path
		if path == "" {
			path = c.DSN
		}
		return NewSQLite(path)
	case "postgres", "postgresql":
		return NewPostgres(c.DSN)
	default:
		return nil, fmt.Errorf("unsupported journal type: %q", c.Type)
	}
}
