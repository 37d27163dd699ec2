package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tujuhre12/recycler/internal/config"
	"github.com/tujuhre12/recycler/internal/recycler"
)

// Frame is the engine state recorded after one simulation step.
type Frame struct {
	Step        string   `json:"step" yaml:"step"`
	Offset      float64  `json:"offset" yaml:"offset"`
	Count       int      `json:"count" yaml:"count"`
	WindowStart int      `json:"window_start" yaml:"window_start"`
	Slots       []int    `json:"slots" yaml:"slots,flow"`
	Near        string   `json:"near,omitempty" yaml:"near,omitempty"`
	Far         string   `json:"far,omitempty" yaml:"far,omitempty"`
	Events      []string `json:"events,omitempty" yaml:"events,omitempty"`
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted scroll session without a terminal",
	Long: heredoc.Doc(`
		Drive the recycling engine through a list of steps and print the slot
		bindings after each one. Steps are separated by commas or given as
		separate --step flags:

		  offset:X   place the content at offset X, at rest
		  tick[:N]   advance N frames of inertia (default 1)
		  fling:V    start inertia at V units/s and run until it stops
		  jump:I     jump to item I
		  snap:I     settle item I on the snap anchor
		  drop       release a pull; armed edges load --batch items
		  append:N   load N items at the far end
		  prepend:N  load N items at the near end
		  recycle:I  remove item I
	`),
	Example: heredoc.Doc(`
		# Scroll, pull past the end and release
		recycler simulate --count 20 --step offset:300,offset:640,drop

		# Variable sizes, as YAML
		recycler simulate --sizes 1,3,2 --step fling:40 --format yaml
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := ResolveCwd(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(cwd)
		if err != nil {
			return err
		}

		count, _ := cmd.Flags().GetInt("count")
		viewport, _ := cmd.Flags().GetFloat64("viewport")
		batch, _ := cmd.Flags().GetInt("batch")
		sizes, _ := cmd.Flags().GetFloat64Slice("sizes")
		steps, _ := cmd.Flags().GetStringSlice("step")
		format, _ := cmd.Flags().GetString("format")

		frames, err := runSimulation(simulation{
			count:    count,
			viewport: viewport,
			batch:    batch,
			sizes:    sizes,
		}, steps, cfg.ToOptions()...)
		if err != nil {
			return err
		}
		return formatFrames(cmd.OutOrStdout(), frames, format)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Int("count", 50, "Number of items")
	simulateCmd.Flags().Float64("viewport", 24, "Visible extent")
	simulateCmd.Flags().Int("batch", 10, "Items loaded per released pull")
	simulateCmd.Flags().Float64Slice("sizes", []float64{1}, "Item sizes, repeated over the list; one value gives a fixed size")
	simulateCmd.Flags().StringSlice("step", nil, "Steps to run")
	simulateCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
}

type simulation struct {
	count    int
	viewport float64
	batch    int
	sizes    []float64

	surface *recycler.Surface
	engine  *recycler.Engine[int]
	events  []string
	loads   []recycler.Direction
}

// settleFrames bounds steps that run until motion stops.
const settleFrames = 3600

func runSimulation(s simulation, steps []string, opts ...recycler.Option) ([]Frame, error) {
	if s.count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", s.count)
	}
	if len(s.sizes) == 0 {
		s.sizes = []float64{1}
	}
	if len(s.sizes) == 1 {
		opts = append(opts, recycler.WithFixedSize(s.sizes[0]))
	} else {
		opts = append(opts, recycler.WithDynamicSize(s.sizes[0]))
	}

	s.surface = recycler.NewSurface(s.viewport)
	engine, err := recycler.New(s.surface, recycler.Callbacks[int]{
		NewView: func(slot int) int { return slot },
		Fill:    func(int, int) {},
		Size: func(i int) float64 {
			return s.sizes[i%len(s.sizes)]
		},
		Pull: func(dir recycler.Direction) {
			s.events = append(s.events, "pull:"+dir.String())
			// Loading from inside the callback would reenter the engine.
			s.loads = append(s.loads, dir)
		},
		Snap: func(index int, _ int) {
			s.events = append(s.events, "snap:"+strconv.Itoa(index))
		},
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	s.engine = engine
	engine.InitData(s.count, false)

	frames := []Frame{s.frame("init")}
	for _, step := range steps {
		if err := s.run(step); err != nil {
			return frames, err
		}
		s.engine.Tick(0)
		frames = append(frames, s.frame(step))
		s.events = nil
	}
	return frames, nil
}

func (s *simulation) run(step string) error {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(step), ":")
	num := func() (float64, error) {
		if !hasArg {
			return 0, fmt.Errorf("step %q needs an argument", step)
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid argument in step %q: %w", step, err)
		}
		return v, nil
	}

	switch name {
	case "offset":
		v, err := num()
		if err != nil {
			return err
		}
		s.surface.SetOffset(v)
		s.surface.SetVelocity(0)
	case "tick":
		n := 1.0
		if hasArg {
			v, err := num()
			if err != nil {
				return err
			}
			n = v
		}
		for range int(n) {
			s.advance()
		}
	case "fling":
		v, err := num()
		if err != nil {
			return err
		}
		s.surface.Fling(v)
		s.advanceUntil(func() bool {
			_, settling := s.engine.Settling()
			return s.surface.Velocity() == 0 && s.surface.Overscroll() == 0 && !settling
		})
	case "jump":
		v, err := num()
		if err != nil {
			return err
		}
		s.engine.ScrollTo(int(v))
	case "snap":
		v, err := num()
		if err != nil {
			return err
		}
		s.engine.SnapTo(int(v))
		s.advanceUntil(func() bool {
			_, settling := s.engine.Settling()
			return !settling
		})
	case "drop":
		s.engine.Drop()
		for _, dir := range s.loads {
			s.load(dir, s.batch)
		}
		s.loads = nil
	case "append", "prepend":
		v, err := num()
		if err != nil {
			return err
		}
		edge := recycler.DirectionBottom
		if name == "prepend" {
			edge = recycler.DirectionTop
		}
		s.load(edge, int(v))
	case "recycle":
		v, err := num()
		if err != nil {
			return err
		}
		s.engine.Recycle(int(v))
	default:
		return fmt.Errorf("unknown step %q", step)
	}
	return nil
}

func (s *simulation) advance() {
	s.surface.Step(time.Second / 60)
	s.engine.Tick(time.Second / 60)
}

func (s *simulation) advanceUntil(done func() bool) {
	for range settleFrames {
		s.advance()
		if done() {
			return
		}
	}
}

func (s *simulation) load(dir recycler.Direction, n int) {
	if n <= 0 {
		return
	}
	count := s.engine.Count() + n
	s.engine.ApplyData(count, n, dir)
	s.events = append(s.events, fmt.Sprintf("load:%s+%d", dir, n))
}

func (s *simulation) frame(step string) Frame {
	f := Frame{
		Step:        step,
		Offset:      s.surface.Offset(),
		Count:       s.engine.Count(),
		WindowStart: s.engine.WindowStart(),
		Events:      s.events,
	}
	for _, slot := range s.engine.Slots() {
		f.Slots = append(f.Slots, slot.Index)
	}
	near, far := s.engine.Labels()
	if near.Visible {
		f.Near = near.Text
	}
	if far.Visible {
		f.Far = far.Text
	}
	return f
}

func formatFrames(w io.Writer, frames []Frame, format string) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(frames, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		data, err := yaml.Marshal(frames)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(w, string(data))
	case "text":
		for _, f := range frames {
			formatFrameText(w, f)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}

func formatFrameText(w io.Writer, f Frame) {
	slots := make([]string, len(f.Slots))
	for i, index := range f.Slots {
		if index == recycler.Unbound {
			slots[i] = "-"
		} else {
			slots[i] = strconv.Itoa(index)
		}
	}
	fmt.Fprintf(w, "%s offset=%g count=%d window=%d slots=[%s]",
		f.Step, f.Offset, f.Count, f.WindowStart, strings.Join(slots, " "))
	if f.Near != "" {
		fmt.Fprintf(w, " near=%q", f.Near)
	}
	if f.Far != "" {
		fmt.Fprintf(w, " far=%q", f.Far)
	}
	if len(f.Events) > 0 {
		fmt.Fprintf(w, " events=%s", strings.Join(f.Events, ","))
	}
	fmt.Fprintln(w)
}
