package harness

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/roach88/affectgrid/internal/grid"
)

// FactSummary is what a scenario can observe about one fact group.
type FactSummary struct {
	CoordinateID int64        `json:"coordinate_id"`
	Valence      grid.Valence `json:"valence"`
	Y            float64      `json:"y"`
}

var (
	groupHeader = regexp.MustCompile(`^# coordinate (\d+) valence (\w+)$`)
	yFact       = regexp.MustCompile(`(?:obo:y|<http://purl\.obolibrary\.org/obo/y>) "([^"]*)"\^\^`)
)

// ParseFactLog reads the group headers and y values of a semantic log in
// either encoding. Every group must carry exactly one y fact.
func ParseFactLog(data []byte) ([]FactSummary, error) {
	facts := []FactSummary{}
	var current *FactSummary
	haveY := false

	closeGroup := func() error {
		if current != nil && !haveY {
			return fmt.Errorf("coordinate %d: group has no y fact", current.CoordinateID)
		}
		if current != nil {
			facts = append(facts, *current)
		}
		return nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if m := groupHeader.FindStringSubmatch(line); m != nil {
			if err := closeGroup(); err != nil {
				return nil, err
			}
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: coordinate id: %w", lineNo, err)
			}
			v, err := grid.ParseValence(m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = &FactSummary{CoordinateID: id, Valence: v}
			haveY = false
			continue
		}

		if m := yFact.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, fmt.Errorf("line %d: y fact outside a group", lineNo)
			}
			if haveY {
				return nil, fmt.Errorf("line %d: coordinate %d has two y facts", lineNo, current.CoordinateID)
			}
			y, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: y literal: %w", lineNo, err)
			}
			current.Y = y
			haveY = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan semantic log: %w", err)
	}
	if err := closeGroup(); err != nil {
		return nil, err
	}
	return facts, nil
}
