package mockruntime

import "fmt"

// getField/setField walk a FieldPath of field indices into a pointer-like
// Value. The interpreter represents every compound aggregate as a VArray of
// member Values, so a field path is just a sequence of slice indices.
func getField(ptr Value, path []uint32) (Value, error) {
	cur := ptr
	if cur.Kind == VPointer {
		if cur.Ptr == nil {
			return Value{}, fmt.Errorf("mockruntime: nil pointer dereference")
		}
		cur = *cur.Ptr
	}
	for _, idx := range path {
		if cur.Kind != VArray || int(idx) >= len(cur.Array) {
			return Value{}, fmt.Errorf("mockruntime: field index %d out of range", idx)
		}
		cur = cur.Array[idx]
	}
	return cur, nil
}

func setField(ptr Value, path []uint32, val Value) error {
	if ptr.Kind != VPointer || ptr.Ptr == nil {
		return fmt.Errorf("mockruntime: set_field target is not a pointer")
	}
	if len(path) == 0 {
		*ptr.Ptr = val
		return nil
	}
	target := ptr.Ptr
	for i, idx := range path {
		if target.Kind != VArray || int(idx) >= len(target.Array) {
			return fmt.Errorf("mockruntime: field index %d out of range", idx)
		}
		if i == len(path)-1 {
			target.Array[idx] = val
			return nil
		}
		target = &target.Array[idx]
	}
	return nil
}
