package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/divdash/pkg/dash/alerts"
	"github.com/komsit37/divdash/pkg/dash/tone"
	"github.com/komsit37/divdash/pkg/dash/view"
)

const defaultMaxColWidth = 60

// TableRenderer writes each section as a titled table as soon as it is
// displayed.
type TableRenderer struct {
	w     io.Writer
	opts  RenderOptions
	count int
}

func NewTableRenderer(w io.Writer, opts RenderOptions) *TableRenderer {
	return &TableRenderer{w: w, opts: opts}
}

func (r *TableRenderer) Flush() error { return nil }

func (r *TableRenderer) Display(section view.Section, vm any) error {
	if r.count > 0 {
		fmt.Fprintln(r.w)
	}
	r.count++

	if st, ok := vm.(view.Status); ok {
		line := st.Line()
		if st.Error != "" {
			line = r.paint(line, text.FgRed)
		}
		if st.Ticker != "" {
			line = r.title(st.Ticker) + "  " + line
		}
		_, err := fmt.Fprintln(r.w, line)
		return err
	}

	fmt.Fprintln(r.w, r.title(strings.ToUpper(string(section))))
	switch v := vm.(type) {
	case view.Unavailable:
		_, err := fmt.Fprintln(r.w, r.paint(v.Message, text.FgYellow))
		return err
	case view.Price:
		r.pairs([][2]string{
			{"close", r.direction(v.Pill, v.Direction)},
			{"day range", v.DayRange},
			{"52w range", v.Range52},
			{"volume", v.Volume},
		})
	case view.Range52:
		rows := [][2]string{
			{"range", v.Low + " ~ " + v.High},
			{"position", v.Gauge + " " + v.Pct},
		}
		if v.Classification.Tag != "" {
			rows = append(rows, [2]string{"zone", v.Classification.Tag})
		}
		rows = append(rows, [2]string{"note", v.Classification.Message})
		if v.History != "" {
			rows = append(rows, [2]string{"history", v.History})
		}
		r.pairs(rows)
	case view.Dividends:
		r.pairs([][2]string{
			{"last", v.Last},
			{"ttm", v.TTM},
			{"ttm yield", v.TTMYield},
			{"monthly avg", v.MonthlyAvg},
		})
		if v.Message != "" {
			fmt.Fprintln(r.w, v.Message)
			return nil
		}
		rows := make([]table.Row, 0, len(v.Recent))
		for _, d := range v.Recent {
			rows = append(rows, table.Row{d.Date, d.Amount})
		}
		r.grid(table.Row{"DATE", "AMOUNT"}, rows, 2)
	case view.Tone:
		r.pairs([][2]string{
			{"score", r.tone(fmt.Sprintf("%d  %s", v.Score, v.Title), v.Label)},
			{"entry", string(v.Actions.Entry)},
			{"hold", string(v.Actions.Hold)},
			{"dca", string(v.Actions.DCA)},
		})
		for _, reason := range v.Reasons {
			fmt.Fprintln(r.w, " - "+reason)
		}
	case view.Events:
		if v.Message != "" {
			fmt.Fprintln(r.w, v.Message)
			return nil
		}
		rows := make([]table.Row, 0, len(v.Items))
		for _, e := range v.Items {
			tag := e.Tag
			if e.Urgent {
				tag = r.paint(tag, text.FgRed, text.Bold)
			}
			note := e.Note
			if e.AvgMove != "" {
				note = strings.TrimSpace(note + " " + e.AvgMove)
			}
			rows = append(rows, table.Row{tag, e.Date, e.Badge, e.Title, e.Impact, note})
		}
		r.grid(table.Row{"D", "DATE", "TYPE", "TITLE", "IMPACT", "NOTE"}, rows, 0)
	case view.Alerts:
		if v.Message != "" {
			fmt.Fprintln(r.w, v.Message)
			return nil
		}
		rows := make([]table.Row, 0, len(v.Items))
		for _, a := range v.Items {
			lvl := strings.ToUpper(string(a.Level))
			if a.Level == alerts.Warn {
				lvl = r.paint(lvl, text.FgYellow)
			}
			rows = append(rows, table.Row{lvl, a.Source, a.Text})
		}
		r.grid(table.Row{"LEVEL", "SOURCE", "TEXT"}, rows, 0)
	case view.Holding:
		if !v.Saved {
			fmt.Fprintln(r.w, v.Message)
			return nil
		}
		r.pairs([][2]string{
			{"avg", v.Avg},
			{"shares", v.Shares},
			{"cost", v.Cost},
			{"value", v.Value},
			{"p&l", r.direction(v.PnL, v.Direction)},
			{"monthly", v.Monthly},
		})
	case view.Simulator:
		r.pairs([][2]string{
			{"shares", v.InitialShares},
			{"income", v.MonthlyIncome},
			{"total", v.TotalDividends},
			{"ending", v.EndingShares},
		})
	case view.Chart:
		hdr := make(table.Row, len(v.Columns))
		right := make([]int, 0, len(v.Columns))
		for i, c := range v.Columns {
			hdr[i] = strings.ToUpper(c)
			if c != "date" && c != "time" {
				right = append(right, i+1)
			}
		}
		rows := make([]table.Row, 0, len(v.Rows))
		for _, cells := range v.Rows {
			row := make(table.Row, len(cells))
			for i, c := range cells {
				row[i] = c
			}
			rows = append(rows, row)
		}
		r.grid(hdr, rows, right...)
	default:
		return fmt.Errorf("table renderer: unsupported view model %T for section %s", vm, section)
	}
	return nil
}

func (r *TableRenderer) newWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.w)
	tw.SetStyle(table.StyleColoredDark)
	if !r.opts.Color {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

func (r *TableRenderer) maxWidth() int {
	if r.opts.MaxColWidth > 0 {
		return r.opts.MaxColWidth
	}
	return defaultMaxColWidth
}

// pairs renders a two-column key/value table without a header.
func (r *TableRenderer) pairs(rows [][2]string) {
	tw := r.newWriter()
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: r.colors(text.Bold)},
		{Number: 2, WidthMax: r.maxWidth()},
	})
	for _, kv := range rows {
		tw.AppendRow(table.Row{kv[0], kv[1]})
	}
	tw.Render()
}

// grid renders a headed table; right lists 1-based columns to right-align.
func (r *TableRenderer) grid(hdr table.Row, rows []table.Row, right ...int) {
	tw := r.newWriter()
	tw.AppendHeader(hdr)
	cfgs := make([]table.ColumnConfig, 0, len(hdr))
	for i := range hdr {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: r.maxWidth()}
		for _, n := range right {
			if n == i+1 {
				cfg.Align = text.AlignRight
				cfg.AlignHeader = text.AlignRight
			}
		}
		cfgs = append(cfgs, cfg)
	}
	tw.SetColumnConfigs(cfgs)
	tw.AppendRows(rows)
	tw.Render()
}

func (r *TableRenderer) title(s string) string {
	if !r.opts.Color {
		return s
	}
	return text.Bold.Sprint(s)
}

func (r *TableRenderer) colors(c ...text.Color) text.Colors {
	if !r.opts.Color {
		return nil
	}
	return text.Colors(c)
}

func (r *TableRenderer) paint(s string, c ...text.Color) string {
	if !r.opts.Color {
		return s
	}
	return text.Colors(c).Sprint(s)
}

func (r *TableRenderer) direction(s string, d view.Direction) string {
	switch d {
	case view.Up:
		return r.paint(s, text.FgGreen)
	case view.Down:
		return r.paint(s, text.FgRed)
	default:
		return s
	}
}

func (r *TableRenderer) tone(s string, l tone.Label) string {
	switch l {
	case tone.Safe:
		return r.paint(s, text.FgGreen)
	case tone.Risk:
		return r.paint(s, text.FgRed)
	default:
		return r.paint(s, text.FgYellow)
	}
}
