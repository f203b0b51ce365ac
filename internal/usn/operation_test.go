package usn

import (
	"testing"

	"github.com/Hara602/usnSentry/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestOperationOfPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		reason model.Reason
		want   model.Operation
	}{
		{"create only", model.ReasonFileCreate, model.OpCreate},
		{"create and delete", model.ReasonFileCreate | model.ReasonFileDelete, model.OpCreate},
		{"create with data", model.ReasonFileCreate | model.ReasonDataExtend | model.ReasonClose, model.OpCreate},
		{"delete and rename", model.ReasonFileDelete | model.ReasonRenameNewName, model.OpDelete},
		{"delete with close", model.ReasonFileDelete | model.ReasonClose, model.OpDelete},
		{"rename new name", model.ReasonRenameNewName, model.OpRename},
		{"rename with overwrite", model.ReasonRenameNewName | model.ReasonDataOverwrite, model.OpRename},
		{"rename old name", model.ReasonRenameOldName, model.OpChange},
		{"overwrite", model.ReasonDataOverwrite, model.OpModify},
		{"extend", model.ReasonDataExtend, model.OpModify},
		{"extend and close", model.ReasonDataExtend | model.ReasonClose, model.OpModify},
		{"truncation", model.ReasonDataTruncation, model.OpChange},
		{"security change", model.ReasonSecurityChange, model.OpChange},
		{"close", model.ReasonClose, model.OpChange},
		{"none", 0, model.OpChange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, OperationOf(tt.reason))
		})
	}
}
