package ir

// Merge fills the gaps in target from other and returns target.
//
// Scalars (name, kind, short and long doc) are copied only when target's are
// unset. Params present in both keep every field target already has and take
// the missing ones from other; params only in other are appended after
// target's own, preserving other's relative order. Returns follows the same
// fill-missing rule and is created when target has none.
//
// Merge never overwrites and is not commutative. Internal is never merged.
func Merge(target, other *IR) *IR {
	if target == nil || other == nil {
		return target
	}

	if target.Name == "" {
		target.Name = other.Name
	}
	if target.Kind == KindUnset {
		target.Kind = other.Kind
	}
	if target.ShortDoc == "" {
		target.ShortDoc = other.ShortDoc
	}
	if target.LongDoc == "" {
		target.LongDoc = other.LongDoc
	}

	for _, op := range other.Params {
		if tp := target.Params.Get(op.Name); tp != nil {
			fillParam(tp, op)
			continue
		}
		target.Params = append(target.Params, op.Clone())
	}

	if other.Returns != nil {
		if target.Returns == nil {
			target.Returns = other.Returns.Clone()
			target.Returns.Name = ReturnKey
		} else {
			fillParam(target.Returns, other.Returns)
		}
	}

	return target
}

// fillParam copies the fields of src that dst lacks.
func fillParam(dst, src *Param) {
	if dst == src {
		return
	}
	if dst.Type == "" {
		dst.Type = src.Type
	}
	if dst.Doc == "" {
		dst.Doc = src.Doc
	}
	if dst.Default == nil && src.Default != nil {
		dst.Default = src.Default
	}
	if dst.Required == nil && src.Required != nil {
		dst.Required = BoolPtr(*src.Required)
	}
}
