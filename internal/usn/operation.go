package usn

import "github.com/Hara602/usnSentry/internal/model"

// OperationOf 按固定优先级判断操作类型：
// CREATE > DELETE > RENAME(new name) > MODIFY(overwrite|extend) > CHANGE
// 同一条记录可能同时置多个位，顺序不能调换。
func OperationOf(r model.Reason) model.Operation {
	switch {
	case r.Has(model.ReasonFileCreate):
		return model.OpCreate
	case r.Has(model.ReasonFileDelete):
		return model.OpDelete
	case r.Has(model.ReasonRenameNewName):
		return model.OpRename
	case r.Has(model.ReasonDataOverwrite | model.ReasonDataExtend):
		return model.OpModify
	default:
		return model.OpChange
	}
}
