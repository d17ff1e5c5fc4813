package beam

import "fmt"

type BatchInput struct {
	Items []Input `json:"items"`
}

type BatchResult struct {
	Results []Result `json:"results"`
}

// CalculateBatch analyses every item in order. The first failing item
// aborts the batch; the error names its index.
func CalculateBatch(in BatchInput) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no items", ErrInvalidInput)
	}
	out := BatchResult{Results: make([]Result, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := Analyze(item)
		if err != nil {
			return BatchResult{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
