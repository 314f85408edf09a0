package errors

// Sentinel errors for each error kind. Errors returned by snip packages wrap exactly one
// of these, so callers can test with Is() or map them back with KindOf().
var (
	ErrCapacityExceeded   = New("capacity exceeded")
	ErrSourceRangeInvalid = New("source range invalid")
	ErrPositionOutOfRange = New("position out of range")
	ErrBufferOverrun      = New("buffer overrun")
	ErrEmptyInput         = New("input buffer is empty")
	ErrNegativeIndex      = New("negative index")
	ErrEmptyOutput        = New("output buffer is empty")

	ErrStructureMismatch  = New("record does not conform to the expected structure")
	ErrUnknownFieldType   = New("unknown field type")
	ErrValidation         = New("validation error")
	ErrReadOnly           = New("record is read only")
	ErrUnknownCompression = New("unknown compression")
)

var kinds = []struct {
	err error
	t   Type
}{
	{ErrCapacityExceeded, TypeCapacityExceeded},
	{ErrSourceRangeInvalid, TypeSourceRangeInvalid},
	{ErrPositionOutOfRange, TypePositionOutOfRange},
	{ErrBufferOverrun, TypeBufferOverrun},
	{ErrEmptyInput, TypeEmptyInput},
	{ErrNegativeIndex, TypeNegativeIndex},
	{ErrEmptyOutput, TypeEmptyOutput},
	{ErrStructureMismatch, TypeStructureMismatch},
	{ErrUnknownFieldType, TypeUnknownFieldType},
	{ErrValidation, TypeValidation},
	{ErrReadOnly, TypeReadOnly},
	{ErrUnknownCompression, TypeUnknownCompression},
}

// KindOf returns the Type of the first sentinel that err wraps. It returns TypeUnknown
// for nil or foreign errors.
func KindOf(err error) Type {
	if err == nil {
		return TypeUnknown
	}
	for _, k := range kinds {
		if Is(err, k.err) {
			return k.t
		}
	}
	return TypeUnknown
}
