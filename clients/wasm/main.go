//go:build js && wasm

// Memoria WASM — Client-side layout and collage rendering.
// Compiled with: GOOS=js GOARCH=wasm go build -o memoria.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
	"github.com/xob0t/memoria/pkg/store"
)

// Assets live in Go memory; the page registers them once and refers to
// them by the returned id.
var (
	assets   = store.NewMemory()
	renderer = compositor.NewRenderer(compositor.SourceLoader{Store: assets}, compositor.WithSupersample(1))
)

func main() {
	fmt.Println("Memoria WASM loaded")

	js.Global().Set("memoriaRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("memoriaRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("memoriaLayout", js.FuncOf(layoutAssets))
	js.Global().Set("memoriaRender", js.FuncOf(renderComposition))
	js.Global().Set("memoriaReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func errorValue(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

// memoriaRegisterAsset(name, base64Data) — store bytes, return the asset JSON.
func registerAsset(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorValue("need name, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	a, err := assets.Put(context.Background(), args[0].String(), bytes.NewReader(data))
	if err != nil {
		return errorValue("store: %v", err)
	}
	out, _ := json.Marshal(a)
	return js.ValueOf(string(out))
}

// memoriaRemoveAsset(id)
func removeAsset(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need id")
	}
	if err := assets.Delete(context.Background(), args[0].String()); err != nil {
		return errorValue("%v", err)
	}
	return js.ValueOf("ok")
}

// resolve decodes assetsJSON, falling back to every registered asset.
func resolve(assetsJSON string) ([]media.Asset, error) {
	if assetsJSON != "" && assetsJSON != "null" && assetsJSON != "[]" {
		var list []media.Asset
		if err := json.Unmarshal([]byte(assetsJSON), &list); err != nil {
			return nil, fmt.Errorf("parse assets: %w", err)
		}
		return list, nil
	}
	return assets.List(context.Background())
}

// memoriaLayout(assetsJSON, template, width, height, spacing, seed) —
// return the placed items as JSON.
func layoutAssets(this js.Value, args []js.Value) any {
	if len(args) < 6 {
		return errorValue("need assetsJSON, template, width, height, spacing, seed")
	}
	list, err := resolve(args[0].String())
	if err != nil {
		return errorValue("%v", err)
	}
	tmpl, err := layout.ParseTemplate(args[1].String())
	if err != nil {
		return errorValue("%v", err)
	}

	items, err := layout.Compute(list, tmpl,
		args[2].Float(), args[3].Float(), args[4].Float(),
		layout.NewRand(int64(args[5].Int())))
	if err != nil {
		return errorValue("layout: %v", err)
	}
	out, err := json.Marshal(items)
	if err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(string(out))
}

// memoriaRender(compositionJSON, assetsJSON, format) — return the encoded
// image as base64.
func renderComposition(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errorValue("need compositionJSON, assetsJSON, format")
	}
	comp, err := scene.ParseComposition([]byte(args[0].String()))
	if err != nil {
		return errorValue("%v", err)
	}
	list, err := resolve(args[1].String())
	if err != nil {
		return errorValue("%v", err)
	}
	f := generator.JPEG
	if name := args[2].String(); name != "" {
		if f, err = generator.FormatFromExt(name); err != nil {
			return errorValue("%v", err)
		}
	}

	res, err := renderer.Export(context.Background(), comp, list, f)
	if err != nil {
		return errorValue("render: %v", err)
	}
	for _, w := range res.Warnings {
		fmt.Println("memoria:", w)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(res.Data))
}
