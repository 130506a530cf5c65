package netxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

// Network is a parsed SUMO network.
type Network struct {
	Junctions []Junction `xml:"junction"`
	Programs  []Program  `xml:"tlLogic"`
}

// Junction is one <junction> element.
type Junction struct {
	ID       string    `xml:"id,attr"`
	Type     string    `xml:"type,attr"`
	X        float64   `xml:"x,attr"`
	Y        float64   `xml:"y,attr"`
	Requests []Request `xml:"request"`
}

// Request is one <request> row of a junction's right-of-way matrix.
type Request struct {
	Index    int    `xml:"index,attr"`
	Response string `xml:"response,attr"`
	Foes     string `xml:"foes,attr"`
	Cont     int    `xml:"cont,attr"`
}

// Program is one <tlLogic> traffic light program.
type Program struct {
	ID        string         `xml:"id,attr"`
	Type      string         `xml:"type,attr"`
	ProgramID string         `xml:"programID,attr"`
	Offset    float64        `xml:"offset,attr"`
	Phases    []ProgramPhase `xml:"phase"`
}

// ProgramPhase is one <phase> of a traffic light program.
type ProgramPhase struct {
	Duration float64 `xml:"duration,attr"`
	State    string  `xml:"state,attr"`
	Name     string  `xml:"name,attr,omitempty"`
}

// Parse decodes a SUMO network from r. Parse does not close r.
func Parse(r io.Reader) (*Network, error) {
	var net Network
	if err := xml.NewDecoder(r).Decode(&net); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNetwork, err, "decode network")
	}
	return &net, nil
}

// Load reads and decodes the SUMO network file at path.
func Load(path string) (*Network, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// ReadFile returns the raw contents of the network file at path, for callers
// that key caches on them. A missing file is errors.ErrCodeFileNotFound.
func ReadFile(path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Junction returns the junction with the given ID.
// It returns errors.ErrCodeJunctionNotFound if there is none.
func (n *Network) Junction(id string) (*Junction, error) {
	if err := errors.ValidateJunctionID(id); err != nil {
		return nil, err
	}
	for i := range n.Junctions {
		if n.Junctions[i].ID == id {
			return &n.Junctions[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeJunctionNotFound, "junction %q not found", id)
}

// TrafficLights returns the IDs of all signal-controlled junctions, in file
// order.
func (n *Network) TrafficLights() []string {
	var ids []string
	for _, j := range n.Junctions {
		if j.Signalized() {
			ids = append(ids, j.ID)
		}
	}
	return ids
}

// Program returns the first traffic light program with the given ID.
func (n *Network) Program(id string) (*Program, error) {
	for i := range n.Programs {
		if n.Programs[i].ID == id {
			return &n.Programs[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no traffic light program for %q", id)
}

// Signalized reports whether the junction is controlled by a traffic light.
func (j *Junction) Signalized() bool {
	return j.Type == phase.TypeTrafficLight
}

// Declaration returns the junction as declared to the enumerator.
func (j *Junction) Declaration() phase.Junction {
	return phase.Junction{ID: j.ID, Type: j.Type}
}

// FoeMatrix builds the conflict relation of the junction from its requests.
//
// Requests are ordered by their index attribute, which must cover 0..n-1
// exactly once, and every foes string must have length n. Violations are
// reported with errors.ErrCodeInvalidMatrix. SUMO's request matrix is
// symmetric for well-formed networks; one-sided entries are closed under
// symmetry rather than rejected.
func (j *Junction) FoeMatrix() (*conflict.Matrix, error) {
	n := len(j.Requests)
	reqs := slices.Clone(j.Requests)
	slices.SortFunc(reqs, func(a, b Request) int { return a.Index - b.Index })

	rows := make([]string, n)
	for i, r := range reqs {
		if r.Index != i {
			return nil, errors.New(errors.ErrCodeInvalidMatrix,
				"junction %q: request indices must be 0..%d without gaps or duplicates (found %d at position %d)",
				j.ID, n-1, r.Index, i)
		}
		if len(r.Foes) != n {
			return nil, errors.New(errors.ErrCodeInvalidMatrix,
				"junction %q: request %d has %d foes, want %d", j.ID, r.Index, len(r.Foes), n)
		}
		rows[i] = r.Foes
	}

	m, err := conflict.FromFoeStrings(rows, conflict.WithSymmetrize())
	if err != nil {
		return nil, fmt.Errorf("junction %q: %w", j.ID, err)
	}
	return m, nil
}
