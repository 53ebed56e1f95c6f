/*
bom.go - Bill of materials and demand explosion

PURPOSE:
  A BOM line says "building one PARENT consumes quantity-per of CHILD".
  Demand explosion pushes a finished good's build schedule down the tree:
  the goods' own daily builds become component consumption on the same
  days, and sub-assemblies pass the demand further down to their own
  children.

STRUCTURE RULES:
  - One line per parent/child pair. Duplicate pairs are a data error the
    stores reject.
  - Quantity-per must be positive.
  - A part never appears on its own BOM.
*/
package planning

import "github.com/shopspring/decimal"

// maxBOMDepth caps explosion recursion. Real BOMs here are two or three
// levels; hitting the cap means the line data contains a cycle.
const maxBOMDepth = 10

// BOMLine relates a parent assembly to one of its components.
// QuantityPer is a unitless ratio: component units consumed per parent
// unit built.
type BOMLine struct {
	Parent      ComponentID
	Component   ComponentID
	QuantityPer decimal.Decimal
}

// ValidateLine checks the structural rules for a single line.
func ValidateLine(line BOMLine) error {
	if line.Parent == line.Component {
		return &ValidationError{Field: "component", Message: "a part cannot appear on its own bill of materials", Cause: ErrInvalidQuantity}
	}
	if !line.QuantityPer.IsPositive() {
		return &ValidationError{Field: "quantity_per", Message: "quantity per must be positive", Cause: ErrInvalidQuantity}
	}
	return nil
}

// ComponentsOf returns the lines where the given part is the parent.
func ComponentsOf(lines []BOMLine, parent ComponentID) []BOMLine {
	var out []BOMLine
	for _, l := range lines {
		if l.Parent == parent {
			out = append(out, l)
		}
	}
	return out
}

// WhereUsed returns the lines where the given part is the component.
func WhereUsed(lines []BOMLine, component ComponentID) []BOMLine {
	var out []BOMLine
	for _, l := range lines {
		if l.Component == component {
			out = append(out, l)
		}
	}
	return out
}

// =============================================================================
// DEMAND EXPLOSION
// =============================================================================

// DemandSet holds dated consumption per component.
type DemandSet map[ComponentID]QuantityByDay

// ExplodeDemand pushes top-level build demand down through the BOM. The
// result contains the build demand itself (a finished good's builds ARE
// its consumption) plus the derived consumption of every part below it,
// accumulated across parents. unitOf stamps the right unit on derived
// quantities; a nil func keeps the parent's unit.
func ExplodeDemand(lines []BOMLine, build DemandSet, unitOf func(ComponentID) Unit) DemandSet {
	byParent := map[ComponentID][]BOMLine{}
	for _, l := range lines {
		byParent[l.Parent] = append(byParent[l.Parent], l)
	}

	out := DemandSet{}
	for id, demand := range build {
		mergeDemandInto(out, id, demand)
		explodeInto(out, byParent, id, demand, unitOf, 0)
	}
	return out
}

func explodeInto(out DemandSet, byParent map[ComponentID][]BOMLine, parent ComponentID, parentDemand QuantityByDay, unitOf func(ComponentID) Unit, depth int) {
	if depth >= maxBOMDepth {
		return
	}
	for _, line := range byParent[parent] {
		childDemand := QuantityByDay{}
		for key, q := range parentDemand {
			scaled := Quantity{Value: q.Value.Mul(line.QuantityPer), Unit: q.Unit}
			if unitOf != nil {
				scaled.Unit = unitOf(line.Component)
			}
			childDemand[key] = scaled
		}
		mergeDemandInto(out, line.Component, childDemand)
		explodeInto(out, byParent, line.Component, childDemand, unitOf, depth+1)
	}
}

func mergeDemandInto(out DemandSet, id ComponentID, demand QuantityByDay) {
	existing, ok := out[id]
	if !ok {
		existing = QuantityByDay{}
		out[id] = existing
	}
	for key, q := range demand {
		cur, have := existing[key]
		if !have {
			existing[key] = q
			continue
		}
		existing[key] = cur.Add(q)
	}
}
