package graph

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// NoiseKind identifies the base distribution a placeholder draws from.
type NoiseKind int

const (
	// NoiseNormal draws independent standard-normal values.
	NoiseNormal NoiseKind = iota
	// NoiseUniform draws independent values uniform on [0, 1).
	NoiseUniform
)

// NoiseSpec pairs a placeholder with the distribution of its base
// randomness.
type NoiseSpec struct {
	Node *Node
	Kind NoiseKind
}

// Plan is an explicit randomness plan: the full list of placeholder draws
// needed to realize one joint sample of a graph. A Plan is built once with
// the graph; Draw is called once per training step to produce fresh base
// randomness for the same symbolic sample.
type Plan []NoiseSpec

// Draw fills a Feed with one assignment of base randomness from src.
// Draw order follows the plan, so a fixed seed reproduces the same feed.
func (p Plan) Draw(src rand.Source) Feed {
	feed := make(Feed, len(p))
	for _, spec := range p {
		buf := make([]float64, spec.Node.shape.Size())
		switch spec.Kind {
		case NoiseUniform:
			d := distuv.Uniform{Min: 0, Max: 1, Src: src}
			for i := range buf {
				buf[i] = d.Rand()
			}
		default:
			d := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
			for i := range buf {
				buf[i] = d.Rand()
			}
		}
		feed[spec.Node] = buf
	}
	return feed
}
