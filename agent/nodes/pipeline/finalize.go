package pipelinenode

import (
	"fmt"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
)

func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Report == nil {
		return GraphOutput{}, fmt.Errorf("%w: report is nil", contractx.ErrValidation)
	}
	return GraphOutput{Report: in.Report}, nil
}
