package plugin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"slices"
	"strings"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/nowplaying"
)

// Result codes understood by the hosting client.
const (
	CodeHalt     = 0
	CodeContinue = 1
	CodeCommand  = 2
	CodeReturn   = 3
)

// Data payloads with a fixed meaning.
const (
	DataOK       = "S_OK"
	DataTimeout  = "E_TIMEOUT"
	DataCanceled = "E_CANCELED"
)

// Entry point names besides the per-field accessors.
const (
	EntryWait    = "wait_for_media"
	EntryHalt    = "halt"
	EntryVersion = "version"
)

// Result is what an entry point hands back to the host.
type Result struct {
	Code int
	Data string
}

func (r Result) String() string {
	return fmt.Sprintf("%d %s", r.Code, r.Data)
}

// Info identifies the build for the version entry point.
type Info struct {
	Name    string
	Version string
	// Client is the hosting application, "Unknown" when empty.
	Client string
}

// Host dispatches named entry points onto a Service.
type Host struct {
	svc  *nowplaying.Service
	info Info
}

// New returns a Host backed by svc.
func New(svc *nowplaying.Service, info Info) *Host {
	if strings.TrimSpace(info.Client) == "" {
		info.Client = "Unknown"
	}
	return &Host{svc: svc, info: info}
}

// Entries lists every name Call accepts.
func (h *Host) Entries() []string {
	names := []string{EntryWait, EntryHalt, EntryVersion}
	for _, f := range media.Fields() {
		names = append(names, f.String())
	}
	slices.Sort(names)
	return names
}

// Call runs the entry point called name. It never panics; unknown names and
// internal failures come back as CodeHalt.
func (h *Host) Call(ctx context.Context, name string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] plugin: %s panicked: %v", name, r)
			res = Result{Code: CodeHalt}
		}
	}()

	switch key := strings.ToLower(strings.TrimSpace(name)); key {
	case EntryWait:
		return h.wait(ctx)
	case EntryHalt:
		h.svc.Halt()
		return Result{Code: CodeReturn, Data: DataOK}
	case EntryVersion:
		return Result{Code: CodeReturn, Data: h.version()}
	default:
		f, ok := media.ParseField(key)
		if !ok {
			log.Printf("[WARN] plugin: unknown entry point %q", name)
			return Result{Code: CodeHalt}
		}
		return Result{Code: CodeReturn, Data: h.svc.Field(f)}
	}
}

func (h *Host) wait(ctx context.Context) Result {
	err := h.svc.WaitForMedia(ctx)
	switch {
	case err == nil:
		return Result{Code: CodeContinue}
	case errors.Is(err, nowplaying.ErrWaitTimeout):
		return Result{Code: CodeReturn, Data: DataTimeout}
	default:
		return Result{Code: CodeReturn, Data: DataCanceled}
	}
}

func (h *Host) version() string {
	return fmt.Sprintf("%s %s on %s (%s)", h.info.Name, h.info.Version, h.info.Client, runtime.GOARCH)
}
