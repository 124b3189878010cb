// Package tableau plays back compositions: hierarchies of timed items
// (sprites, particles, null transforms, messages, click regions) driven by a
// global playhead and drawn by an external renderer.
//
// The package holds no GPU state. A renderer such as
// github.com/phanxgames/tableau/ebitenrender pulls two things from it each
// frame: the mesh split delta that says which draw batches to create, update
// or release, and the world matrix of every member item.
//
// # Quick start
//
//	data, _ := os.ReadFile("scene.json")
//	scene, err := tableau.LoadScene(data)
//	if err != nil { ... }
//	comp, err := scene.Build("", tableau.Options{})
//	if err != nil { ... }
//
//	for each frame {
//		comp.Tick(dt)
//		delta := comp.DiffMeshSplits()
//		// allocate delta.Add, rewrite delta.Modify, release delta.Remove
//	}
//
// Compositions can also be built in code with [NewItem] and
// [Composition.AppendItem].
//
// # Time model
//
// Every item has a [TimeWindow]: a delay, a duration and an [EndBehavior].
// [ResolveTime] maps the playhead onto the window. Before the delay the item
// is pending and its transform reads as the identity. Inside the window it is
// active. After the window, EndDestroy removes it, EndFreeze holds the last
// frame, EndLoop wraps and EndForward stops rendering while descendants keep
// composing against its clamped transform.
//
// # Transforms
//
// A [Transform] caches its world matrix. Setters bump a generation counter
// on the node only; children notice on their next read by comparing the
// parent generation they last composed against. Nothing walks the subtree on
// a write.
//
// # Mesh splits
//
// Consecutive active sprites with an equal [BatchKey] share one draw batch, a
// [MeshSplit]. Particles and hidden sprites break runs. A split is also
// closed when it reaches [Limits].MaxItemsPerSplit items or would sample more
// than MaxFragmentTextures atlas pages. The partition is canonical, so the
// order in which items start never changes the result. [Reconciler] keeps it
// incrementally and [Reconciler.DiffMeshSplits] reports the batches to add,
// modify and remove. A modified split keeps its Batch so renderers can update
// in place.
//
// # Events
//
// Register callbacks with [Composition.On]. Message items emit
// EventMessageBegin and EventMessageEnd, items reaching their end emit
// EventItemEnd, looping items emit EventLoopStart, [Composition.Click] emits
// EventClick for the topmost active interact item. The ecs submodule
// republishes events into a Donburi world.
//
// # Logging
//
// The package logs through go.uber.org/zap. It is silent until
// [SetLogger] installs a logger.
package tableau
