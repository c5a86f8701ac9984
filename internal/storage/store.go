package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/force"
	"github.com/san-kum/fdgsim/internal/jsongraph"
	"github.com/san-kum/fdgsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
	historyFile   = "history.csv"
	graphFile     = "graph.json"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Source           string             `json:"source,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
	Seed             int64              `json:"seed"`
	Dimensions       int                `json:"dimensions"`
	Dt               float64            `json:"dt"`
	Damping          float64            `json:"damping"`
	Repulsion        float64            `json:"repulsion"`
	Attraction       float64            `json:"attraction"`
	IdealLength      float64            `json:"ideal_length"`
	Centering        float64            `json:"centering"`
	CenterOnCentroid bool               `json:"center_on_centroid"`
	Drag             float64            `json:"drag"`
	MinDistance      float64            `json:"min_distance"`
	StartSize        float64            `json:"node_start_size"`
	Nodes            int                `json:"nodes"`
	Edges            int                `json:"edges"`
	Steps            int                `json:"steps"`
	Settled          bool               `json:"settled"`
	Metrics          map[string]float64 `json:"metrics"`
}

// Parameters rebuilds the simulation parameters the run was made with.
func (m *RunMetadata) Parameters() sim.Parameters {
	d := dynamo.Dimensions(m.Dimensions)
	return sim.Parameters{
		Dimensions: d,
		Dt:         m.Dt,
		Damping:    m.Damping,
		Force: force.Params{
			Repulsion:        m.Repulsion,
			Attraction:       m.Attraction,
			IdealLength:      m.IdealLength,
			Centering:        m.Centering,
			CenterOnCentroid: m.CenterOnCentroid,
			Damping:          m.Drag,
			MinDistance:      m.MinDistance,
			Dimensions:       d,
		},
		NodeStartSize: m.StartSize,
		Seed:          m.Seed,
	}
}

// Position is one row of positions.csv.
type Position struct {
	Index    int
	Name     string
	Location r3.Vec
	Pinned   bool
}

// Run is everything Save persists. Graph, when set, is an interchange
// document written next to the CSV files.
type Run struct {
	Name      string
	Source    string
	Params    sim.Parameters
	Result    *sim.Result
	Positions []Position
	Edges     int
	Graph     []byte
}

func PositionsOf[N any](views []sim.NodeView[N]) []Position {
	out := make([]Position, len(views))
	for i, v := range views {
		out[i] = Position{Index: int(v.Index), Name: v.Name, Location: v.Location, Pinned: v.Pinned}
	}
	return out
}

func (s *Store) Save(run Run) (string, error) {
	if run.Result == nil {
		return "", errors.New("storage: nil result")
	}

	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	p := run.Params
	meta := RunMetadata{
		ID:          runID,
		Name:        run.Name,
		Source:      run.Source,
		Timestamp:   time.Now(),
		Seed:        p.Seed,
		Dimensions:  int(p.Dimensions),
		Dt:          p.Dt,
		Damping:     p.Damping,
		Repulsion:   p.Force.Repulsion,
		Attraction:  p.Force.Attraction,
		IdealLength: p.Force.IdealLength,
		Centering:   p.Force.Centering,

		CenterOnCentroid: p.Force.CenterOnCentroid,
		Drag:             p.Force.Damping,
		MinDistance:      p.Force.MinDistance,
		StartSize:        p.NodeStartSize,
		Nodes:            len(run.Positions),
		Edges:            run.Edges,
		Steps:            run.Result.StepsTaken,
		Settled:          run.Result.Settled,
		Metrics:          run.Result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writePositions(filepath.Join(runDir, positionsFile), run.Positions); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), run.Result.History); err != nil {
		return "", err
	}
	if len(run.Graph) > 0 {
		if err := os.WriteFile(filepath.Join(runDir, graphFile), run.Graph, 0644); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writePositions(path string, positions []Position) error {
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []string{
			strconv.Itoa(p.Index), p.Name,
			ff(p.Location.X), ff(p.Location.Y), ff(p.Location.Z),
			strconv.FormatBool(p.Pinned),
		})
	}
	return writeCSV(path, []string{"index", "name", "x", "y", "z", "pinned"}, rows)
}

func writeHistory(path string, history []sim.Stats) error {
	rows := make([][]string, 0, len(history))
	for _, st := range history {
		rows = append(rows, []string{
			strconv.Itoa(st.Step),
			ff(st.MaxDisplacement), ff(st.TotalDisplacement), ff(st.KineticEnergy),
			ff(st.NetForce.X), ff(st.NetForce.Y), ff(st.NetForce.Z),
			strconv.Itoa(st.Frozen),
		})
	}
	header := []string{"step", "max_displacement", "total_displacement", "kinetic_energy", "net_force_x", "net_force_y", "net_force_z", "frozen"}
	return writeCSV(path, header, rows)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

// Resolve expands a unique id prefix to a full run id.
func (s *Store) Resolve(prefix string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}

	var match string
	for _, r := range runs {
		if r.ID == prefix {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("storage: run prefix %q is ambiguous", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s %s: %w", runID, name, err)
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Store) LoadPositions(runID string) ([]Position, error) {
	records, err := s.readCSV(runID, positionsFile)
	if err != nil {
		return nil, err
	}

	positions := make([]Position, 0, len(records))
	for line, record := range records {
		if len(record) != 6 {
			return nil, fmt.Errorf("run %s positions line %d: want 6 fields, got %d", runID, line+2, len(record))
		}
		idx, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("run %s positions line %d: %w", runID, line+2, err)
		}
		xyz, err := parseFloats(record[2:5])
		if err != nil {
			return nil, fmt.Errorf("run %s positions line %d: %w", runID, line+2, err)
		}
		pinned, err := strconv.ParseBool(record[5])
		if err != nil {
			return nil, fmt.Errorf("run %s positions line %d: %w", runID, line+2, err)
		}
		positions = append(positions, Position{
			Index:    idx,
			Name:     record[1],
			Location: r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]},
			Pinned:   pinned,
		})
	}
	return positions, nil
}

func (s *Store) LoadHistory(runID string) ([]sim.Stats, error) {
	records, err := s.readCSV(runID, historyFile)
	if err != nil {
		return nil, err
	}

	history := make([]sim.Stats, 0, len(records))
	for line, record := range records {
		if len(record) != 8 {
			return nil, fmt.Errorf("run %s history line %d: want 8 fields, got %d", runID, line+2, len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("run %s history line %d: %w", runID, line+2, err)
		}
		vals, err := parseFloats(record[1:7])
		if err != nil {
			return nil, fmt.Errorf("run %s history line %d: %w", runID, line+2, err)
		}
		frozen, err := strconv.Atoi(record[7])
		if err != nil {
			return nil, fmt.Errorf("run %s history line %d: %w", runID, line+2, err)
		}
		history = append(history, sim.Stats{
			Step:              step,
			MaxDisplacement:   vals[0],
			TotalDisplacement: vals[1],
			KineticEnergy:     vals[2],
			NetForce:          r3.Vec{X: vals[3], Y: vals[4], Z: vals[5]},
			Frozen:            frozen,
		})
	}
	return history, nil
}

// LoadGraph reads the graph document saved with the run, if any.
func (s *Store) LoadGraph(runID string) (*jsongraph.Graph, error) {
	return jsongraph.ReadFile(filepath.Join(s.baseDir, runID, graphFile))
}
