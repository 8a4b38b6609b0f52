package indexfile

// indexFile is the on-disk shape produced by the offline index builder.
type indexFile struct {
	System     string        `json:"system"`
	Documents  []documentDTO `json:"documents"`
	Embeddings [][]float32   `json:"embeddings"`
}

type documentDTO struct {
	Code       string `json:"code"`
	Term       string `json:"term"`
	English    string `json:"english,omitempty"`
	Definition string `json:"definition,omitempty"`
}
