package ebitenrender

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/tableau"
)

// Atlas holds the page images of a TexturePacker export and its named
// regions.
type Atlas struct {
	// Pages contains the atlas page images indexed by page number.
	Pages   []*ebiten.Image
	regions map[string]tableau.TextureRegion
}

// Region returns the named region. A missing name logs a warning and yields
// a 1x1 magenta placeholder.
func (a *Atlas) Region(name string) tableau.TextureRegion {
	if r, ok := a.regions[name]; ok {
		return r
	}
	tableau.Logger().Warn("atlas region not found", zap.String("region", name))
	return magentaRegion()
}

// Len returns the number of named regions.
func (a *Atlas) Len() int {
	return len(a.regions)
}

// magenta placeholder singleton, created on first draw
var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

// magentaPlaceholderPage is a sentinel page index that never collides with a
// registered page.
const magentaPlaceholderPage = 0xFFFF

func magentaRegion() tableau.TextureRegion {
	return tableau.TextureRegion{
		Page:      magentaPlaceholderPage,
		Width:     1,
		Height:    1,
		OriginalW: 1,
		OriginalH: 1,
	}
}

var errAtlasFormat = errors.New("ebitenrender: atlas JSON has neither \"frames\" nor \"textures\" key")

// LoadAtlas parses TexturePacker JSON and associates the given page images.
// Both the hash format (single "frames" object) and the multi-page array
// format ("textures") are accepted. Page numbers start at firstPage so a
// second atlas can sit after the pages of the first.
func LoadAtlas(jsonData []byte, pages []*ebiten.Image, firstPage uint16) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("ebitenrender: parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]tableau.TextureRegion),
	}

	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("ebitenrender: parse atlas textures: %w", err)
		}
		for i, tex := range textures {
			for name, f := range tex.Frames {
				atlas.regions[name] = frameToRegion(f, firstPage+uint16(i))
			}
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("ebitenrender: parse atlas frames: %w", err)
		}
		for name, f := range frames {
			atlas.regions[name] = frameToRegion(f, firstPage)
		}
	default:
		return nil, errAtlasFormat
	}
	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func frameToRegion(f jsonFrame, page uint16) tableau.TextureRegion {
	return tableau.TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}
