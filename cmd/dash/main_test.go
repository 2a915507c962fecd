package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketDoc = `{
	"ticker": "JEPQ",
	"summary": {"asof": "2025-03-18", "last_close": 55.0, "range_52w_low": 44, "range_52w_high": 58},
	"series": [
		{"time": 1741824000, "open": 54.8, "high": 55.1, "low": 54.6, "close": 54.9, "volume": 1000},
		{"time": 1742256000, "open": 54.9, "high": 55.2, "low": 54.7, "close": 55.0, "volume": 1200}
	],
	"derived": {"pos_52w_pct": 78.6},
	"dividend_summary": {"monthly_avg_dividend": 0.45}
}`

const eventsDoc = `events:
  - date: "2099-01-16"
    title: Monthly options expiry
    type: options
`

type fixture struct {
	market, events, store string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		market: filepath.Join(dir, "jepq.json"),
		events: filepath.Join(dir, "events.yaml"),
		store:  "file:" + filepath.Join(dir, "state", "position.json"),
	}
	require.NoError(t, os.WriteFile(f.market, []byte(marketDoc), 0o644))
	require.NoError(t, os.WriteFile(f.events, []byte(eventsDoc), 0o644))
	return f
}

// execute runs the CLI with JSON output and returns the decoded sections.
func execute(t *testing.T, f fixture, args ...string) (map[string]json.RawMessage, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--market", f.market,
		"--events", f.events,
		"--store", f.store,
		"--format", "json",
		"--log-level", "error",
	}, args...))
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	if out.Len() == 0 {
		return nil, nil
	}
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
	return got, nil
}

func TestShowCommand(t *testing.T) {
	got, err := execute(t, newFixture(t), "show")
	require.NoError(t, err)
	for _, k := range []string{"status", "price", "range52", "dividends", "tone", "events", "alerts", "position"} {
		assert.Contains(t, got, k)
	}
	assert.JSONEq(t, `{"ticker":"JEPQ","asof":"2025-03-18"}`, string(got["status"]))
}

func TestShowCommandMissingMarket(t *testing.T) {
	f := newFixture(t)
	f.market = filepath.Join(t.TempDir(), "nope.json")
	got, err := execute(t, f, "show")
	require.NoError(t, err)
	var st struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(got["status"], &st))
	assert.Equal(t, "data load error: check "+f.market, st.Error)
}

func TestPositionCommands(t *testing.T) {
	f := newFixture(t)

	_, err := execute(t, f, "position", "save", "--avg", "50", "--shares", "10")
	require.NoError(t, err)

	got, err := execute(t, f, "position", "show")
	require.NoError(t, err)
	var h struct {
		Saved bool   `json:"saved"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal(got["position"], &h))
	assert.True(t, h.Saved)
	assert.Equal(t, "$550.00", h.Value)

	_, err = execute(t, f, "position", "reset")
	require.NoError(t, err)
	got, err = execute(t, f, "position", "show")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(got["position"], &h))
	assert.False(t, h.Saved)

	_, err = execute(t, f, "position", "save", "--avg", "0", "--shares", "10")
	assert.ErrorContains(t, err, "positive avg")
}

func TestSimCommand(t *testing.T) {
	got, err := execute(t, newFixture(t), "sim", "--invested", "1350000", "--months", "12", "--reinvest")
	require.NoError(t, err)
	var s struct {
		Available     bool   `json:"available"`
		InitialShares string `json:"initial_shares"`
	}
	require.NoError(t, json.Unmarshal(got["simulator"], &s))
	assert.True(t, s.Available)
	assert.Equal(t, "18.1818 shares", s.InitialShares)
}

func TestChartCommand(t *testing.T) {
	got, err := execute(t, newFixture(t), "chart", "--tf", "max", "--sets", "compact")
	require.NoError(t, err)
	var c struct {
		Timeframe string     `json:"timeframe"`
		Columns   []string   `json:"columns"`
		Rows      [][]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(got["chart"], &c))
	assert.Equal(t, "MAX", c.Timeframe)
	assert.Equal(t, []string{"date", "close", "chg%"}, c.Columns)
	assert.Len(t, c.Rows, 2)

	_, err = execute(t, newFixture(t), "chart", "--tf", "2W")
	assert.ErrorContains(t, err, "unknown timeframe")
}

func TestEventsCommandFilter(t *testing.T) {
	got, err := execute(t, newFixture(t), "events", "--filter", "futures")
	require.NoError(t, err)
	var ev struct {
		Items   []any  `json:"items"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(got["events"], &ev))
	assert.Empty(t, ev.Items)
	assert.Equal(t, "No event data yet.", ev.Message)
}

func TestConfigFile(t *testing.T) {
	f := newFixture(t)
	cfg := filepath.Join(t.TempDir(), "dash.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("fx: 1000\n"), 0o644))

	got, err := execute(t, f, "--config", cfg, "sim", "--invested", "1000", "--price", "50", "--dividend", "0.5")
	require.NoError(t, err)
	var s struct {
		Input struct {
			FXRate float64 `json:"fx_rate"`
		} `json:"input"`
		InitialShares string `json:"initial_shares"`
	}
	require.NoError(t, json.Unmarshal(got["simulator"], &s))
	assert.Equal(t, 1000.0, s.Input.FXRate)
	assert.Equal(t, "0.0200 shares", s.InitialShares)
}
