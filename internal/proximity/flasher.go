package proximity

import (
	"context"
	"fmt"

	"proximity.onebusaway.org/internal/metrics"
	"proximity.onebusaway.org/internal/page"
)

type flashPhase int

const (
	phaseOff flashPhase = iota
	phaseOn
)

func (p flashPhase) String() string {
	if p == phaseOn {
		return "on"
	}
	return "off"
}

// flasher toggles a highlight on the map container. Its phase is owned by
// the recurring task it backs; nothing else reads or writes it.
type flasher struct {
	style    page.Style
	property string
	color    string
	phase    flashPhase
}

func newFlasher(style page.Style, property, color string) *flasher {
	return &flasher{
		style:    style,
		property: property,
		color:    color,
		phase:    phaseOff,
	}
}

// tick advances the flasher one phase. A rejected mutation is fatal.
func (f *flasher) tick(ctx context.Context) error {
	next := phaseOn
	var err error
	if f.phase == phaseOff {
		err = f.style.SetProperty(ctx, f.property, f.color)
	} else {
		next = phaseOff
		err = f.style.RemoveProperty(ctx, f.property)
	}
	if err != nil {
		return page.Fatal("flash "+next.String(), fmt.Errorf("%w: %w", page.ErrStyleMutationFailed, err))
	}

	f.phase = next
	metrics.FlashToggles.WithLabelValues(next.String()).Inc()
	return nil
}
