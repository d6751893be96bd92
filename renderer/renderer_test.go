package renderer

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/pthm-cable/spacetime/config"
)

func mustLoadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestSelectFallsBackInOrder(t *testing.T) {
	cfg := mustLoadConfig(t)
	var tried []string

	candidates := []Candidate{
		{
			Name:  NameScene,
			Probe: func() error { tried = append(tried, "probe-scene"); return ErrUnavailable },
			Open:  func() (Backend, error) { t.Fatal("scene must not open after a failed probe"); return nil, nil },
		},
		{
			Name: NameCanvas,
			Open: func() (Backend, error) {
				tried = append(tried, "open-canvas")
				return nil, errors.New("tty lost")
			},
		},
		{
			Name: NameHeadless,
			Open: func() (Backend, error) {
				tried = append(tried, "open-headless")
				return NewHeadless(cfg), nil
			},
		},
	}

	b, err := Select(candidates)
	if err != nil {
		t.Fatalf("expected a backend, got %v", err)
	}
	defer b.Close()
	if b.Name() != NameHeadless {
		t.Errorf("expected headless, got %s", b.Name())
	}

	want := []string{"probe-scene", "open-canvas", "open-headless"}
	if len(tried) != len(want) {
		t.Fatalf("expected attempts %v, got %v", want, tried)
	}
	for i := range want {
		if tried[i] != want[i] {
			t.Errorf("attempt %d: expected %s, got %s", i, want[i], tried[i])
		}
	}
}

func TestSelectRecoversFromPanic(t *testing.T) {
	cfg := mustLoadConfig(t)
	candidates := []Candidate{
		{Name: NameScene, Open: func() (Backend, error) { panic("no GL context") }},
		{Name: NameHeadless, Open: func() (Backend, error) { return NewHeadless(cfg), nil }},
	}

	b, err := Select(candidates)
	if err != nil {
		t.Fatalf("expected fallback after panic, got %v", err)
	}
	defer b.Close()
	if b.Name() != NameHeadless {
		t.Errorf("expected headless, got %s", b.Name())
	}
}

func TestSelectNoMount(t *testing.T) {
	candidates := []Candidate{
		{Name: NameScene, Probe: func() error { return ErrUnavailable }},
		{Name: NameCanvas, Open: func() (Backend, error) { return nil, nil }},
	}

	b, err := Select(candidates)
	if b != nil {
		t.Error("expected no backend")
	}
	if !errors.Is(err, ErrNoMount) {
		t.Errorf("expected ErrNoMount, got %v", err)
	}
}

func TestOpenWrapsErrors(t *testing.T) {
	_, err := open(Candidate{Name: NameCanvas, Open: func() (Backend, error) { return nil, errors.New("boom") }})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCandidates(t *testing.T) {
	cfg := mustLoadConfig(t)

	testCases := []struct {
		backend string
		want    []string
	}{
		{"", []string{NameScene, NameCanvas}},
		{NameAuto, []string{NameScene, NameCanvas}},
		{NameScene, []string{NameScene}},
		{NameCanvas, []string{NameCanvas}},
		{NameHeadless, []string{NameHeadless}},
	}

	for _, tc := range testCases {
		got, err := Candidates(cfg, Options{Backend: tc.backend})
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.backend, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%q: expected %d candidates, got %d", tc.backend, len(tc.want), len(got))
		}
		for i := range got {
			if got[i].Name != tc.want[i] {
				t.Errorf("%q: candidate %d is %s, expected %s", tc.backend, i, got[i].Name, tc.want[i])
			}
		}
	}

	if _, err := Candidates(cfg, Options{Backend: "vulkan"}); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestDisplayAvailable(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	testCases := []struct {
		goos string
		vars map[string]string
		ok   bool
	}{
		{"linux", nil, false},
		{"linux", map[string]string{"DISPLAY": ":0"}, true},
		{"linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, true},
		{"freebsd", nil, false},
		{"darwin", nil, true},
		{"windows", nil, true},
	}

	for _, tc := range testCases {
		err := displayAvailable(tc.goos, env(tc.vars))
		if (err == nil) != tc.ok {
			t.Errorf("%s %v: expected ok=%v, got %v", tc.goos, tc.vars, tc.ok, err)
		}
		if err != nil && !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s: expected ErrUnavailable, got %v", tc.goos, err)
		}
	}
}

func TestSelectIsSilentAfterOpen(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	cfg := mustLoadConfig(t)
	atOpen := -1
	candidates := []Candidate{
		{Name: NameScene, Probe: func() error { return ErrUnavailable }},
		{
			Name: NameCanvas,
			Open: func() (Backend, error) {
				atOpen = buf.Len()
				return NewHeadless(cfg), nil
			},
		},
	}

	b, err := Select(candidates)
	if err != nil {
		t.Fatalf("expected a backend, got %v", err)
	}
	if atOpen <= 0 {
		t.Fatalf("expected the failed probe to be logged before opening, got %d bytes", atOpen)
	}
	if buf.Len() != atOpen {
		t.Errorf("expected no log output after the backend opened, got %q", buf.String()[atOpen:])
	}
	b.Close()
}
