package services

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	testhelpers "github.com/vsinha/bomengine/pkg/infrastructure/testing"
)

func chainCatalog(cyclic bool) ([]*entities.Component, []*entities.BOM) {
	b := testhelpers.NewBuilder()
	b.Component("ROOT", entities.Finished)
	b.Component("A", entities.SemiFinished)
	b.Component("B", entities.SemiFinished)
	b.Component("LEAF", entities.Raw)

	b.BOM("ROOT", "1", testhelpers.Material("A", "2"))
	b.BOM("A", "1", testhelpers.Material("B", "2"))
	if cyclic {
		b.BOM("B", "1", testhelpers.Material("A", "1"), testhelpers.Material("LEAF", "1"))
	} else {
		b.BOM("B", "1", testhelpers.Material("LEAF", "1"))
	}
	return b.Catalog()
}

func TestBOMValidator_ValidCatalog(t *testing.T) {
	components, boms := chainCatalog(false)

	result := NewBOMValidator().ValidateCatalog(components, boms)

	if !result.Valid() {
		t.Fatalf("Expected valid catalog, got errors: %v", result.Errors)
	}
	if result.HasCycles {
		t.Error("Expected no cycles")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestBOMValidator_DetectCycle(t *testing.T) {
	components, boms := chainCatalog(true)

	result := NewBOMValidator().ValidateCatalog(components, boms)

	if !result.HasCycles {
		t.Fatal("Expected cycle to be detected")
	}
	want := [][]entities.ComponentID{{"A", "B", "A"}}
	if !reflect.DeepEqual(result.CyclePaths, want) {
		t.Errorf("Expected cycle paths %v, got %v", want, result.CyclePaths)
	}
	if result.Valid() {
		t.Error("Expected a cycle to be an error")
	}
}

func TestBOMValidator_DetectSelfReference(t *testing.T) {
	b := testhelpers.NewBuilder()
	b.Component("MIX", entities.WIP)
	b.Component("WATER", entities.Raw)
	b.BOM("MIX", "10", testhelpers.Material("MIX", "1"), testhelpers.Material("WATER", "9"))
	components, boms := b.Catalog()

	result := NewBOMValidator().ValidateCatalog(components, boms)

	want := [][]entities.ComponentID{{"MIX", "MIX"}}
	if !reflect.DeepEqual(result.CyclePaths, want) {
		t.Errorf("Expected cycle paths %v, got %v", want, result.CyclePaths)
	}
}

func TestBOMValidator_DraftsDoNotFormCycles(t *testing.T) {
	b := testhelpers.NewBuilder()
	b.Component("A", entities.SemiFinished)
	b.Component("B", entities.SemiFinished)
	b.Component("LEAF", entities.Raw)
	b.BOM("A", "1", testhelpers.Material("B", "1"))
	b.BOM("B", "1", testhelpers.Material("LEAF", "1"))
	b.BOMWithStatus("B", "1.1", entities.StatusDraft, "1", testhelpers.Material("A", "1"))
	components, boms := b.Catalog()

	result := NewBOMValidator().ValidateCatalog(components, boms)

	if result.HasCycles {
		t.Errorf("Expected draft BOMs to be ignored, got cycles %v", result.CyclePaths)
	}
}

func TestBOMValidator_StructuralProblems(t *testing.T) {
	b := testhelpers.NewBuilder()
	b.Component("BREAD", entities.Finished)
	b.Component("DOUGH", entities.SemiFinished)
	b.Component("SALT", entities.Raw)
	b.Component("GHOST", entities.Raw)
	bread := b.BOM("BREAD", "100",
		testhelpers.Material("DOUGH", "80"),
		testhelpers.Material("SALT", "1"),
		testhelpers.Material("SALT", "1"),
		testhelpers.Material("GHOST", "1"),
	)
	components, boms := b.Catalog()

	// Drop GHOST from the component list and add a second active BREAD BOM
	components = components[:3]
	second := bread.Clone()
	second.ID = uuid.New()
	boms = append(boms, second)

	result := NewBOMValidator().ValidateCatalog(append(components, components[2]), boms)

	if result.Valid() {
		t.Fatal("Expected errors")
	}
	if !reflect.DeepEqual(result.UnknownComponents, []entities.ComponentID{"GHOST"}) {
		t.Errorf("Expected GHOST to be unknown, got %v", result.UnknownComponents)
	}
	if !reflect.DeepEqual(result.MissingBOMs, []entities.ComponentID{"DOUGH"}) {
		t.Errorf("Expected DOUGH to miss a BOM, got %v", result.MissingBOMs)
	}

	// SALT twice on each of the two BREAD BOMs
	if len(result.DuplicateLines) != 2 {
		t.Fatalf("Expected 2 duplicate lines, got %d", len(result.DuplicateLines))
	}
	if result.DuplicateLines[0].ComponentID != "SALT" || result.DuplicateLines[0].Count != 2 {
		t.Errorf("Unexpected duplicate line %+v", result.DuplicateLines[0])
	}

	// duplicate SALT component, unknown GHOST, two active BREAD BOMs
	if len(result.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
}
