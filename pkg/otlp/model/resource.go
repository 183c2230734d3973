package model

type Resource struct {
	Attributes             Attributes
	DroppedAttributesCount uint32
}

type InstrumentationScope struct {
	Name                   string
	Version                string
	Attributes             Attributes
	DroppedAttributesCount uint32
}
