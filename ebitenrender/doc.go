// Package ebitenrender draws tableau compositions with Ebitengine.
//
// A [Renderer] owns one vertex batch per mesh split. After every tick, pass
// the composition's delta to [Renderer.Sync]: added splits get a batch,
// modified splits keep theirs, removed splits release theirs to a pool.
// [Renderer.Draw] then fills each batch from its members' world matrices
// through the camera view and submits one DrawTriangles32 call per texture
// page of the split. Particle emitters are drawn in between, at their list
// position.
//
// [Run] wraps all of this in an ebiten.Game:
//
//	comp, _ := scene.Build("intro", tableau.Options{})
//	r := ebitenrender.NewRenderer()
//	r.RegisterPage(0, atlasPage)
//	err := ebitenrender.Run(comp, ebitenrender.RunConfig{
//		Title:    "Intro",
//		Width:    640,
//		Height:   480,
//		Renderer: r,
//	})
//
// Left clicks are forwarded to Composition.Click in screen coordinates.
package ebitenrender
