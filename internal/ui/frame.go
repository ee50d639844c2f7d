// Package ui is the per-frame overlay commands draw into. A Frame collects
// widgets for exactly one rendered frame; the host renders and discards them.
package ui

// Frame is the handle commands receive every frame.
type Frame interface {
	// Caption draws a line of free text above the scene.
	Caption(text string)
	// Dialog draws a speech box.
	Dialog(speaker, text string)
	// Button draws a prompt and reports whether it was activated this frame.
	Button(id string) bool
}

// Input is what the host latched from the user since the previous frame.
type Input struct {
	Confirm bool
}

// WidgetKind enumerates overlay widgets.
type WidgetKind string

const (
	WidgetCaption WidgetKind = "caption"
	WidgetDialog  WidgetKind = "dialog"
	WidgetButton  WidgetKind = "button"
)

// Widget is one drawn element.
type Widget struct {
	Kind    WidgetKind
	Speaker string
	Text    string
}

// Overlay is the Frame implementation used by the host.
type Overlay struct {
	input     Input
	confirmed bool
	widgets   []Widget
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{}
}

// Begin starts a new frame: previous widgets are dropped and input latched.
func (o *Overlay) Begin(input Input) {
	o.input = input
	o.confirmed = false
	o.widgets = o.widgets[:0]
}

// Caption implements Frame.
func (o *Overlay) Caption(text string) {
	o.widgets = append(o.widgets, Widget{Kind: WidgetCaption, Text: text})
}

// Dialog implements Frame.
func (o *Overlay) Dialog(speaker, text string) {
	o.widgets = append(o.widgets, Widget{Kind: WidgetDialog, Speaker: speaker, Text: text})
}

// Button implements Frame. A latched confirm activates the first button drawn
// in the frame and is consumed by it.
func (o *Overlay) Button(id string) bool {
	o.widgets = append(o.widgets, Widget{Kind: WidgetButton, Text: id})
	if o.input.Confirm {
		o.input.Confirm = false
		o.confirmed = true
		return true
	}
	return false
}

// Widgets returns a copy of what was drawn this frame.
func (o *Overlay) Widgets() []Widget {
	return append([]Widget(nil), o.widgets...)
}

// Confirmed reports whether a button consumed the confirm this frame.
func (o *Overlay) Confirmed() bool {
	return o.confirmed
}

// WaitingForConfirm reports whether a button is on screen.
func (o *Overlay) WaitingForConfirm() bool {
	for _, w := range o.widgets {
		if w.Kind == WidgetButton {
			return true
		}
	}
	return false
}
