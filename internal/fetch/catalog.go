package fetch

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

//go:embed schema.cue
var schemaCUE string

//go:embed catalog.cue
var defaultCatalogCUE []byte

// Catalog maps source identifiers to canned batches.
// A Catalog is immutable after loading and safe for concurrent use.
type Catalog struct {
	defaultSource string
	latency       time.Duration
	hasLatency    bool
	sources       map[string][]post.Record
}

// CatalogError reports a catalog that failed to load or validate.
type CatalogError struct {
	Filename string
	Message  string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %s", e.Filename, e.Message)
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog("catalog.cue", defaultCatalogCUE)
}

// LoadCatalog reads and parses a CUE catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(path, data)
}

// ParseCatalog compiles src, unifies it with the catalog schema and decodes
// the sources. The default source must name one of the sources.
func ParseCatalog(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, cueError("schema.cue", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, cueError(filename, err)
	}

	v := schema.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(filename, err)
	}

	c := &Catalog{}

	def, err := v.LookupPath(cue.ParsePath("default")).String()
	if err != nil {
		return nil, cueError(filename, err)
	}
	c.defaultSource = def

	if err := v.LookupPath(cue.ParsePath("sources")).Decode(&c.sources); err != nil {
		return nil, cueError(filename, err)
	}
	if len(c.sources) == 0 {
		return nil, &CatalogError{Filename: filename, Message: "no sources defined"}
	}
	if _, ok := c.sources[c.defaultSource]; !ok {
		return nil, &CatalogError{Filename: filename, Message: fmt.Sprintf("default source %q is not defined", c.defaultSource)}
	}

	lv := v.LookupPath(cue.ParsePath("latency_ms"))
	if lv.Exists() && lv.IsConcrete() {
		ms, err := lv.Int64()
		if err != nil {
			return nil, cueError(filename, err)
		}
		c.latency = time.Duration(ms) * time.Millisecond
		c.hasLatency = true
	}

	for key, records := range c.sources {
		for i := range records {
			records[i] = records[i].Clone()
		}
		c.sources[key] = records
	}

	return c, nil
}

func cueError(filename string, err error) *CatalogError {
	return &CatalogError{
		Filename: filename,
		Message:  strings.TrimSpace(cueerrors.Details(err, nil)),
	}
}

// Default returns the source served on a miss.
func (c *Catalog) Default() string {
	return c.defaultSource
}

// Latency returns the catalog's simulated latency, if it sets one.
func (c *Catalog) Latency() (time.Duration, bool) {
	return c.latency, c.hasLatency
}

// Sources returns the known source identifiers in sorted order.
func (c *Catalog) Sources() []string {
	out := make([]string, 0, len(c.sources))
	for k := range c.sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Has reports whether sourceID (after trimming) is a known source.
func (c *Catalog) Has(sourceID string) bool {
	_, ok := c.sources[strings.TrimSpace(sourceID)]
	return ok
}

// Resolve returns the batch for sourceID, falling back to the default batch
// when the source is unknown. Surrounding whitespace is ignored. Records are
// deep copies.
func (c *Catalog) Resolve(sourceID string) Batch {
	key := strings.TrimSpace(sourceID)
	records, ok := c.sources[key]

	b := Batch{Source: sourceID, Resolved: key}
	if !ok {
		b.Resolved = c.defaultSource
		b.Fallback = true
		records = c.sources[c.defaultSource]
	}

	b.Records = make([]post.Record, len(records))
	for i, r := range records {
		b.Records[i] = r.Clone()
	}
	return b
}
