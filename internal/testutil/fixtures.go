package testutil

// SampleMindmapJSON is a small single-rooted mind-map:
//
//	1 Root
//	├── 2 Alpha
//	│   └── 4 Gamma
//	└── 3 Beta
var SampleMindmapJSON = `{
  "nodes": [
    {"id": 1, "label": "Root"},
    {"id": 2, "label": "Alpha"},
    {"id": 3, "label": "Beta"},
    {"id": 4, "label": "Gamma"}
  ],
  "edges": [
    {"source": 1, "target": 2},
    {"source": 1, "target": 3},
    {"source": 2, "target": 4}
  ]
}`

// SampleEnvelopeJSON is a learning-content response carrying
// SampleMindmapJSON next to lesson material.
var SampleEnvelopeJSON = `{"topic": "Sample", "pages": [{"title": "Introduction"}], "mindmap": ` + SampleMindmapJSON + `}`

// NoMindmapEnvelopeJSON is a learning-content response without a mind-map.
var NoMindmapEnvelopeJSON = `{"topic": "Sample", "pages": [{"title": "Introduction"}]}`

// StrayNodeMindmapJSON adds node 5, which has no edges: it is both an
// extra root and unreachable from node 1.
var StrayNodeMindmapJSON = `{
  "nodes": [
    {"id": 1, "label": "Root"},
    {"id": 2, "label": "Alpha"},
    {"id": 5, "label": "Stray"}
  ],
  "edges": [
    {"source": 1, "target": 2}
  ]
}`

// EmptyMindmapJSON has the keys but nothing in them.
var EmptyMindmapJSON = `{"nodes": [], "edges": []}`
