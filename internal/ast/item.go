package ast

import (
	"ripple/internal/source"
)

type ItemKind uint8

const (
	// ItemAggDef declares a named aggregate type.
	ItemAggDef ItemKind = iota
	// ItemStage declares a pipeline stage with a statement body.
	ItemStage
)

func (k ItemKind) String() string {
	switch k {
	case ItemAggDef:
		return "aggregate-def"
	case ItemStage:
		return "stage"
	default:
		return "unknown"
	}
}

// Item is one top-level declaration.
type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// AggDefField is one field declaration inside an aggregate definition.
type AggDefField struct {
	Name source.StringID
	Ann  TypeSynID
	Span source.Span
}

// ItemAggDefData declares an aggregate with ordered typed fields.
type ItemAggDefData struct {
	Name   source.StringID
	Fields []AggDefField
}

// ItemStageData is a pipeline stage whose body the inference pass walks.
type ItemStageData struct {
	Name source.StringID
	Body StmtID
}

// Items manages allocation of top-level items.
type Items struct {
	Arena   *Arena[Item]
	AggDefs *Arena[ItemAggDefData]
	Stages  *Arena[ItemStageData]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena:   NewArena[Item](capHint),
		AggDefs: NewArena[ItemAggDefData](capHint),
		Stages:  NewArena[ItemStageData](capHint),
	}
}

func (i *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the item with the given ID.
func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

// NewAggDef declares an aggregate type.
func (i *Items) NewAggDef(span source.Span, name source.StringID, fields []AggDefField) ItemID {
	payload := i.AggDefs.Allocate(ItemAggDefData{Name: name, Fields: fields})
	return i.new(ItemAggDef, span, PayloadID(payload))
}

// NewStage declares a pipeline stage.
func (i *Items) NewStage(span source.Span, name source.StringID, body StmtID) ItemID {
	payload := i.Stages.Allocate(ItemStageData{Name: name, Body: body})
	return i.new(ItemStage, span, PayloadID(payload))
}

// AggDef returns the aggregate definition payload.
func (i *Items) AggDef(id ItemID) (*ItemAggDefData, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemAggDef {
		return nil, false
	}
	return i.AggDefs.Get(uint32(item.Payload)), true
}

// Stage returns the stage payload.
func (i *Items) Stage(id ItemID) (*ItemStageData, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemStage {
		return nil, false
	}
	return i.Stages.Get(uint32(item.Payload)), true
}
