package union

import "reflect"

// OneOf2 holds exactly one of 2 alternatives.
type OneOf2[T0, T1 any] struct {
	tag   uint8
	value any
}

// Index returns the discriminant, or -1 when unset.
func (u OneOf2[T0, T1]) Index() int { return int(u.tag) - 1 }

// Value returns the payload.
func (u OneOf2[T0, T1]) Value() any { return u.value }

// Alternatives returns the declared alternative types.
func (OneOf2[T0, T1]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T0](), reflect.TypeFor[T1]()}
}

// Assign replaces the union with v as alternative index.
func (u *OneOf2[T0, T1]) Assign(index int, v any) error {
	tag, value, err := assign(*u, index, v)
	if err != nil {
		return err
	}
	u.tag, u.value = tag, value
	return nil
}

func (u OneOf2[T0, T1]) String() string { return format(u) }

// SetT0 replaces the union with v as alternative 0.
func (u *OneOf2[T0, T1]) SetT0(v T0) { u.tag, u.value = 1, v }

// AsT0 returns alternative 0 and whether it is the one held.
func (u OneOf2[T0, T1]) AsT0() (T0, bool) { return as[T0](u.tag, 1, u.value) }

// IsT0 reports whether alternative 0 is held.
func (u OneOf2[T0, T1]) IsT0() bool { return u.tag == 1 }

// SetT1 replaces the union with v as alternative 1.
func (u *OneOf2[T0, T1]) SetT1(v T1) { u.tag, u.value = 2, v }

// AsT1 returns alternative 1 and whether it is the one held.
func (u OneOf2[T0, T1]) AsT1() (T1, bool) { return as[T1](u.tag, 2, u.value) }

// IsT1 reports whether alternative 1 is held.
func (u OneOf2[T0, T1]) IsT1() bool { return u.tag == 2 }

// OneOf3 holds exactly one of 3 alternatives.
type OneOf3[T0, T1, T2 any] struct {
	tag   uint8
	value any
}

// Index returns the discriminant, or -1 when unset.
func (u OneOf3[T0, T1, T2]) Index() int { return int(u.tag) - 1 }

// Value returns the payload.
func (u OneOf3[T0, T1, T2]) Value() any { return u.value }

// Alternatives returns the declared alternative types.
func (OneOf3[T0, T1, T2]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T0](), reflect.TypeFor[T1](), reflect.TypeFor[T2]()}
}

// Assign replaces the union with v as alternative index.
func (u *OneOf3[T0, T1, T2]) Assign(index int, v any) error {
	tag, value, err := assign(*u, index, v)
	if err != nil {
		return err
	}
	u.tag, u.value = tag, value
	return nil
}

func (u OneOf3[T0, T1, T2]) String() string { return format(u) }

// SetT0 replaces the union with v as alternative 0.
func (u *OneOf3[T0, T1, T2]) SetT0(v T0) { u.tag, u.value = 1, v }

// AsT0 returns alternative 0 and whether it is the one held.
func (u OneOf3[T0, T1, T2]) AsT0() (T0, bool) { return as[T0](u.tag, 1, u.value) }

// IsT0 reports whether alternative 0 is held.
func (u OneOf3[T0, T1, T2]) IsT0() bool { return u.tag == 1 }

// SetT1 replaces the union with v as alternative 1.
func (u *OneOf3[T0, T1, T2]) SetT1(v T1) { u.tag, u.value = 2, v }

// AsT1 returns alternative 1 and whether it is the one held.
func (u OneOf3[T0, T1, T2]) AsT1() (T1, bool) { return as[T1](u.tag, 2, u.value) }

// IsT1 reports whether alternative 1 is held.
func (u OneOf3[T0, T1, T2]) IsT1() bool { return u.tag == 2 }

// SetT2 replaces the union with v as alternative 2.
func (u *OneOf3[T0, T1, T2]) SetT2(v T2) { u.tag, u.value = 3, v }

// AsT2 returns alternative 2 and whether it is the one held.
func (u OneOf3[T0, T1, T2]) AsT2() (T2, bool) { return as[T2](u.tag, 3, u.value) }

// IsT2 reports whether alternative 2 is held.
func (u OneOf3[T0, T1, T2]) IsT2() bool { return u.tag == 3 }

// OneOf4 holds exactly one of 4 alternatives.
type OneOf4[T0, T1, T2, T3 any] struct {
	tag   uint8
	value any
}

// Index returns the discriminant, or -1 when unset.
func (u OneOf4[T0, T1, T2, T3]) Index() int { return int(u.tag) - 1 }

// Value returns the payload.
func (u OneOf4[T0, T1, T2, T3]) Value() any { return u.value }

// Alternatives returns the declared alternative types.
func (OneOf4[T0, T1, T2, T3]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T0](), reflect.TypeFor[T1](), reflect.TypeFor[T2](), reflect.TypeFor[T3]()}
}

// Assign replaces the union with v as alternative index.
func (u *OneOf4[T0, T1, T2, T3]) Assign(index int, v any) error {
	tag, value, err := assign(*u, index, v)
	if err != nil {
		return err
	}
	u.tag, u.value = tag, value
	return nil
}

func (u OneOf4[T0, T1, T2, T3]) String() string { return format(u) }

// SetT0 replaces the union with v as alternative 0.
func (u *OneOf4[T0, T1, T2, T3]) SetT0(v T0) { u.tag, u.value = 1, v }

// AsT0 returns alternative 0 and whether it is the one held.
func (u OneOf4[T0, T1, T2, T3]) AsT0() (T0, bool) { return as[T0](u.tag, 1, u.value) }

// IsT0 reports whether alternative 0 is held.
func (u OneOf4[T0, T1, T2, T3]) IsT0() bool { return u.tag == 1 }

// SetT1 replaces the union with v as alternative 1.
func (u *OneOf4[T0, T1, T2, T3]) SetT1(v T1) { u.tag, u.value = 2, v }

// AsT1 returns alternative 1 and whether it is the one held.
func (u OneOf4[T0, T1, T2, T3]) AsT1() (T1, bool) { return as[T1](u.tag, 2, u.value) }

// IsT1 reports whether alternative 1 is held.
func (u OneOf4[T0, T1, T2, T3]) IsT1() bool { return u.tag == 2 }

// SetT2 replaces the union with v as alternative 2.
func (u *OneOf4[T0, T1, T2, T3]) SetT2(v T2) { u.tag, u.value = 3, v }

// AsT2 returns alternative 2 and whether it is the one held.
func (u OneOf4[T0, T1, T2, T3]) AsT2() (T2, bool) { return as[T2](u.tag, 3, u.value) }

// IsT2 reports whether alternative 2 is held.
func (u OneOf4[T0, T1, T2, T3]) IsT2() bool { return u.tag == 3 }

// SetT3 replaces the union with v as alternative 3.
func (u *OneOf4[T0, T1, T2, T3]) SetT3(v T3) { u.tag, u.value = 4, v }

// AsT3 returns alternative 3 and whether it is the one held.
func (u OneOf4[T0, T1, T2, T3]) AsT3() (T3, bool) { return as[T3](u.tag, 4, u.value) }

// IsT3 reports whether alternative 3 is held.
func (u OneOf4[T0, T1, T2, T3]) IsT3() bool { return u.tag == 4 }

// OneOf5 holds exactly one of 5 alternatives.
type OneOf5[T0, T1, T2, T3, T4 any] struct {
	tag   uint8
	value any
}

// Index returns the discriminant, or -1 when unset.
func (u OneOf5[T0, T1, T2, T3, T4]) Index() int { return int(u.tag) - 1 }

// Value returns the payload.
func (u OneOf5[T0, T1, T2, T3, T4]) Value() any { return u.value }

// Alternatives returns the declared alternative types.
func (OneOf5[T0, T1, T2, T3, T4]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T0](), reflect.TypeFor[T1](), reflect.TypeFor[T2](), reflect.TypeFor[T3](), reflect.TypeFor[T4]()}
}

// Assign replaces the union with v as alternative index.
func (u *OneOf5[T0, T1, T2, T3, T4]) Assign(index int, v any) error {
	tag, value, err := assign(*u, index, v)
	if err != nil {
		return err
	}
	u.tag, u.value = tag, value
	return nil
}

func (u OneOf5[T0, T1, T2, T3, T4]) String() string { return format(u) }

// SetT0 replaces the union with v as alternative 0.
func (u *OneOf5[T0, T1, T2, T3, T4]) SetT0(v T0) { u.tag, u.value = 1, v }

// AsT0 returns alternative 0 and whether it is the one held.
func (u OneOf5[T0, T1, T2, T3, T4]) AsT0() (T0, bool) { return as[T0](u.tag, 1, u.value) }

// IsT0 reports whether alternative 0 is held.
func (u OneOf5[T0, T1, T2, T3, T4]) IsT0() bool { return u.tag == 1 }

// SetT1 replaces the union with v as alternative 1.
func (u *OneOf5[T0, T1, T2, T3, T4]) SetT1(v T1) { u.tag, u.value = 2, v }

// AsT1 returns alternative 1 and whether it is the one held.
func (u OneOf5[T0, T1, T2, T3, T4]) AsT1() (T1, bool) { return as[T1](u.tag, 2, u.value) }

// IsT1 reports whether alternative 1 is held.
func (u OneOf5[T0, T1, T2, T3, T4]) IsT1() bool { return u.tag == 2 }

// SetT2 replaces the union with v as alternative 2.
func (u *OneOf5[T0, T1, T2, T3, T4]) SetT2(v T2) { u.tag, u.value = 3, v }

// AsT2 returns alternative 2 and whether it is the one held.
func (u OneOf5[T0, T1, T2, T3, T4]) AsT2() (T2, bool) { return as[T2](u.tag, 3, u.value) }

// IsT2 reports whether alternative 2 is held.
func (u OneOf5[T0, T1, T2, T3, T4]) IsT2() bool { return u.tag == 3 }

// SetT3 replaces the union with v as alternative 3.
func (u *OneOf5[T0, T1, T2, T3, T4]) SetT3(v T3) { u.tag, u.value = 4, v }

// AsT3 returns alternative 3 and whether it is the one held.
func (u OneOf5[T0, T1, T2, T3, T4]) AsT3() (T3, bool) { return as[T3](u.tag, 4, u.value) }

// IsT3 reports whether alternative 3 is held.
func (u OneOf5[T0, T1, T2, T3, T4]) IsT3() bool { return u.tag == 4 }

// SetT4 replaces the union with v as alternative 4.
func (u *OneOf5[T0, T1, T2, T3, T4]) SetT4(v T4) { u.tag, u.value = 5, v }

// AsT4 returns alternative 4 and whether it is the one held.
func (u OneOf5[T0, T1, T2, T3, T4]) AsT4() (T4, bool) { return as[T4](u.tag, 5, u.value) }

// IsT4 reports whether alternative 4 is held.
func (u OneOf5[T0, T1, T2, T3, T4]) IsT4() bool { return u.tag == 5 }

// OneOf6 holds exactly one of 6 alternatives.
type OneOf6[T0, T1, T2, T3, T4, T5 any] struct {
	tag   uint8
	value any
}

// Index returns the discriminant, or -1 when unset.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) Index() int { return int(u.tag) - 1 }

// Value returns the payload.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) Value() any { return u.value }

// Alternatives returns the declared alternative types.
func (OneOf6[T0, T1, T2, T3, T4, T5]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T0](), reflect.TypeFor[T1](), reflect.TypeFor[T2](), reflect.TypeFor[T3](), reflect.TypeFor[T4](), reflect.TypeFor[T5]()}
}

// Assign replaces the union with v as alternative index.
func (u *OneOf6[T0, T1, T2, T3, T4, T5]) Assign(index int, v any) error {
	tag, value, err := assign(*u, index, v)
	if err != nil {
		return err
	}
	u.tag, u.value = tag, value
	return nil
}

func (u OneOf6[T0, T1, T2, T3, T4, T5]) String() string { return format(u) }

// SetT0 replaces the union with v as alternative 0.
func (u *OneOf6[T0, T1, T2, T3, T4, T5]) SetT0(v T0) { u.tag, u.value = 1, v }

// AsT0 returns alternative 0 and whether it is the one held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) AsT0() (T0, bool) { return as[T0](u.tag, 1, u.value) }

// IsT0 reports whether alternative 0 is held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) IsT0() bool { return u.tag == 1 }

// SetT1 replaces the union with v as alternative 1.
func (u *OneOf6[T0, T1, T2, T3, T4, T5]) SetT1(v T1) { u.tag, u.value = 2, v }

// AsT1 returns alternative 1 and whether it is the one held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) AsT1() (T1, bool) { return as[T1](u.tag, 2, u.value) }

// IsT1 reports whether alternative 1 is held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) IsT1() bool { return u.tag == 2 }

// SetT2 replaces the union with v as alternative 2.
func (u *OneOf6[T0, T1, T2, T3, T4, T5]) SetT2(v T2) { u.tag, u.value = 3, v }

// AsT2 returns alternative 2 and whether it is the one held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) AsT2() (T2, bool) { return as[T2](u.tag, 3, u.value) }

// IsT2 reports whether alternative 2 is held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) IsT2() bool { return u.tag == 3 }

// SetT3 replaces the union with v as alternative 3.
func (u *OneOf6[T0, T1, T2, T3, T4, T5]) SetT3(v T3) { u.tag, u.value = 4, v }

// AsT3 returns alternative 3 and whether it is the one held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) AsT3() (T3, bool) { return as[T3](u.tag, 4, u.value) }

// IsT3 reports whether alternative 3 is held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) IsT3() bool { return u.tag == 4 }

// SetT4 replaces the union with v as alternative 4.
func (u *OneOf6[T0, T1, T2, T3, T4, T5]) SetT4(v T4) { u.tag, u.value = 5, v }

// AsT4 returns alternative 4 and whether it is the one held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) AsT4() (T4, bool) { return as[T4](u.tag, 5, u.value) }

// IsT4 reports whether alternative 4 is held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) IsT4() bool { return u.tag == 5 }

// SetT5 replaces the union with v as alternative 5.
func (u *OneOf6[T0, T1, T2, T3, T4, T5]) SetT5(v T5) { u.tag, u.value = 6, v }

// AsT5 returns alternative 5 and whether it is the one held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) AsT5() (T5, bool) { return as[T5](u.tag, 6, u.value) }

// IsT5 reports whether alternative 5 is held.
func (u OneOf6[T0, T1, T2, T3, T4, T5]) IsT5() bool { return u.tag == 6 }
