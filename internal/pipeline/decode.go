package pipeline

import (
	"bytes"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/affectgrid/internal/grid"
)

// submissionSchema is the contract of a POST /save_coordinates body.
// Extra fields are allowed and ignored.
const submissionSchema = `
#Submission: {
	x: number
	y: number
	...
}
`

// Decoder validates request bodies against the submission schema.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so Decode
// serializes on an internal mutex.
type Decoder struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
	xPath  cue.Path
	yPath  cue.Path
}

// NewDecoder compiles the submission schema.
func NewDecoder() (*Decoder, error) {
	ctx := cuecontext.New()
	file := ctx.CompileString(submissionSchema, cue.Filename("submission.cue"))
	if err := file.Err(); err != nil {
		return nil, fmt.Errorf("compile submission schema: %w", err)
	}
	schema := file.LookupPath(cue.ParsePath("#Submission"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("lookup submission schema: %w", err)
	}
	return &Decoder{
		ctx:    ctx,
		schema: schema,
		xPath:  cue.ParsePath("x"),
		yPath:  cue.ParsePath("y"),
	}, nil
}

// Decode parses a JSON body into a point.
//
// Any failure (empty body, invalid JSON, a non-object, missing or
// non-numeric x or y) is a MALFORMED_INPUT IngestError.
func (d *Decoder) Decode(body []byte) (grid.Point, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return grid.Point{}, newMalformedError("empty body", nil)
	}

	expr, err := cuejson.Extract("submission.json", body)
	if err != nil {
		return grid.Point{}, newMalformedError("invalid JSON", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return grid.Point{}, newMalformedError("invalid JSON", err)
	}

	unified := d.schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return grid.Point{}, newMalformedError("body must contain numeric x and y", err)
	}

	x, err := unified.LookupPath(d.xPath).Float64()
	if err != nil {
		return grid.Point{}, newMalformedError("x is not representable as float64", err)
	}
	y, err := unified.LookupPath(d.yPath).Float64()
	if err != nil {
		return grid.Point{}, newMalformedError("y is not representable as float64", err)
	}

	return grid.Point{X: x, Y: y}, nil
}
