package main

import (
	"fmt"
	"image/color"

	"github.com/milk9111/crosswalk/sim"
	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// HUD is the signal panel in the top-left corner: countdown, what the
// intersection is doing, and the pedestrian counts while they cross.
type HUD struct {
	UI *ebitenui.UI

	countdown   *widget.Text
	description *widget.Text
	counts      *widget.Text
}

func NewHUD() *HUD {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 170})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	grey := color.NRGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}

	h := &HUD{
		countdown:   widget.NewText(widget.TextOpts.Text("Loading...", &face, white)),
		description: widget.NewText(widget.TextOpts.Text("", &face, white)),
		counts:      widget.NewText(widget.TextOpts.Text("", &face, grey)),
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 10, Bottom: 10, Left: 14, Right: 14}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(200, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionStart, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	panel.AddChild(h.countdown)
	panel.AddChild(h.description)
	panel.AddChild(h.counts)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout(
			widget.AnchorLayoutOpts.Padding(&widget.Insets{Top: 12, Left: 12}),
		)),
	)
	root.AddChild(panel)

	h.UI = &ebitenui.UI{Container: root}
	return h
}

// SetStatus shows the latest frame's status.
func (h *HUD) SetStatus(s sim.Status) {
	h.countdown.Label = s.Countdown
	h.description.Label = s.Description
	if s.Walking > 0 || s.Waiting > 0 {
		h.counts.Label = fmt.Sprintf("%d walking, %d waiting", s.Walking, s.Waiting)
	} else {
		h.counts.Label = ""
	}
}

// SetMessage replaces the panel with a single line, used while loading and
// after a load failure.
func (h *HUD) SetMessage(msg string) {
	h.countdown.Label = msg
	h.description.Label = ""
	h.counts.Label = ""
}
