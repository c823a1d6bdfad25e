package channels

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// AutoName selects channel-count probing instead of a catalog layout.
const AutoName = "auto"

// AutoID marks a layout whose channels are unknown until probed.
const AutoID = -1

// MaxProbeChannels bounds channel-count probing.
const MaxProbeChannels = 32

// ErrUnknownLayout reports a layout name missing from the catalog.
var ErrUnknownLayout = errors.New("unknown channel layout")

// Layout is a named, ordered set of channel labels.
type Layout struct {
	Name  string
	ID    int
	Names []string
}

type entry struct {
	name  string
	id    int
	names []string
}

var layouts = []entry{
	{"2.0", 0, []string{"L", "R"}},
	{"3.1", 3, []string{"L", "R", "C", "LFE"}},
	{"5.1", 7, []string{"L", "R", "C", "LFE", "Ls", "Rs"}},
	{"7.1", 11, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs"}},
	{"9.1", 12, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs", "Lw", "Rw"}},
	{"5.1.2", 13, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Ltm", "Rtm"}},
	{"5.1.4", 14, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Ltf", "Rtf", "Ltr", "Rtr"}},
	{"7.1.2", 15, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs", "Ltm", "Rtm"}},
	{"7.1.4", 16, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs", "Ltf", "Rtf", "Ltr", "Rtr"}},
	{"7.1.6", 17, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs", "Ltf", "Rtf", "Ltm", "Rtm", "Ltr", "Rtr"}},
	{"9.1.2", 18, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs", "Lw", "Rw", "Ltm", "Rtm"}},
	{"9.1.4", 19, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs", "Lw", "Rw", "Ltf", "Rtf", "Ltr", "Rtr"}},
	{"9.1.6", 20, []string{"L", "R", "C", "LFE", "Ls", "Rs", "Lrs", "Rrs", "Lw", "Rw", "Ltf", "Rtf", "Ltm", "Rtm", "Ltr", "Rtr"}},
}

var (
	byName map[string]*entry
	widest *entry
)

func init() {
	byName = make(map[string]*entry, len(layouts))
	for i := range layouts {
		e := &layouts[i]
		byName[foldName(e.name)] = e
		if widest == nil || len(e.names) > len(widest.names) {
			widest = e
		}
	}
}

// Lookup resolves a layout by case-insensitive name. The name "auto" returns
// the probing sentinel.
func Lookup(name string) (Layout, error) {
	key := foldName(name)
	if key == AutoName {
		return Auto(), nil
	}
	if e, ok := byName[key]; ok {
		return e.layout(), nil
	}
	return Layout{}, fmt.Errorf("%w: 未知声道配置/Unknown channel configuration %q; 支持的配置/Supported: %s",
		ErrUnknownLayout, name, strings.Join(SupportedNames(), ", "))
}

// Auto returns the sentinel layout used when the channel count must be probed.
func Auto() Layout {
	return Layout{Name: AutoName, ID: AutoID}
}

// MaxCapacity returns the layout with the most channels; its ID is handed to
// the decoder while probing.
func MaxCapacity() Layout {
	return widest.layout()
}

// Supported returns every catalog layout in table order.
func Supported() []Layout {
	out := make([]Layout, 0, len(layouts))
	for i := range layouts {
		out = append(out, layouts[i].layout())
	}
	return out
}

// SupportedNames lists catalog layout names in table order.
func SupportedNames() []string {
	out := make([]string, 0, len(layouts))
	for i := range layouts {
		out = append(out, layouts[i].name)
	}
	return out
}

// Detected builds a layout for a probed source with n channels labelled Ch01..ChNN.
func Detected(n int) Layout {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Ch%02d", i+1)
	}
	return Layout{Name: AutoName, ID: AutoID, Names: names}
}

// IsAuto reports whether the layout still needs probing or came from probing.
func (l Layout) IsAuto() bool {
	return l.ID == AutoID
}

// Count returns the number of channels in the layout.
func (l Layout) Count() int {
	return len(l.Names)
}

// Flatten joins labels with single spaces, e.g. "L R C LFE".
func (l Layout) Flatten() string {
	return strings.Join(l.Names, " ")
}

// Labeled returns 1-based "index: label" pairs.
func (l Layout) Labeled() []string {
	out := make([]string, len(l.Names))
	for i, name := range l.Names {
		out[i] = fmt.Sprintf("%d: %s", i+1, name)
	}
	return out
}

// Casers carry state, so each lookup folds with its own.
func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func (e *entry) layout() Layout {
	names := make([]string, len(e.names))
	copy(names, e.names)
	return Layout{Name: e.name, ID: e.id, Names: names}
}
