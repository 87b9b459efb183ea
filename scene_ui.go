package main

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/sceneviewer/ecs"
	"github.com/milk9111/sceneviewer/ecs/component"
)

const emptyHint = "Drop a .gltf or .glb file here, paste a path (Ctrl+V) or press Open."

// sceneUI is the side panel listing instantiated scenes.
type sceneUI struct {
	ui    *ebitenui.UI
	list  *widget.Text
	label string
}

func newSceneUI(g *Game) *sceneUI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 180})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	btnTextColor := &widget.ButtonTextColor{Idle: colornames.White}

	title := widget.NewText(
		widget.TextOpts.Text("Scenes", &face, colornames.Lightsteelblue),
	)
	list := widget.NewText(
		widget.TextOpts.Text(emptyHint, &face, colornames.White),
	)

	openBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
		widget.ButtonOpts.Text("Open...", &face, btnTextColor),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.openDialog()
		}),
	)
	clearBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
		widget.ButtonOpts.Text("Clear", &face, btnTextColor),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.clearScenes()
		}),
	)

	buttons := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(8),
		)),
	)
	buttons.AddChild(openBtn)
	buttons.AddChild(clearBtn)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 16, Right: 16}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(list)
	panel.AddChild(buttons)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &sceneUI{ui: &ebitenui.UI{Container: root}, list: list, label: emptyHint}
}

func (s *sceneUI) Update(w *ecs.World) {
	if label := sceneListLabel(w); label != s.label {
		s.label = label
		s.list.Label = label
	}
	s.ui.Update()
}

func (s *sceneUI) Draw(screen *ebiten.Image) {
	s.ui.Draw(screen)
}

// sceneListLabel renders one line per scene instance, sorted by label.
func sceneListLabel(w *ecs.World) string {
	var lines []string
	ecs.ForEach(w, component.SceneInstanceComponent, func(_ ecs.Entity, inst *component.SceneInstance) {
		if !inst.Ready() {
			lines = append(lines, fmt.Sprintf("%s  (loading)", inst.Label))
			return
		}
		line := fmt.Sprintf("%s  nodes:%d meshes:%d materials:%d", inst.Label, inst.Scene.Nodes, inst.Scene.Meshes, inst.Scene.Materials)
		if inst.Scene.Name != "" {
			line += "  [" + inst.Scene.Name + "]"
		}
		if inst.Version > 0 {
			line += fmt.Sprintf("  v%d", inst.Version)
		}
		lines = append(lines, line)
	})
	if len(lines) == 0 {
		return emptyHint
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
