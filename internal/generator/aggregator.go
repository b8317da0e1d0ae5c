package generator

import "github.com/toyz/autoimpl/internal/models"

// AggregatedContract is one contract a target must satisfy
type AggregatedContract struct {
	ID         models.ContractID
	InBaseList bool // asserted on the target, or embedded by an asserted contract
	Root       bool // directly known on the target
	Strict     bool // effective strictness for its members
}

// Aggregate computes the transitive closure of contracts for a target in
// depth-first pre-order. Each contract appears once no matter how many
// embedding paths reach it. Contracts that are not opted in inherit the
// strictness of the contract that first reached them.
func Aggregate(table *models.SymbolTable, target *models.TargetType) []AggregatedContract {
	covered := explicitClosure(table, target.ExplicitContracts)
	visited := make(map[models.ContractID]bool)
	var out []AggregatedContract

	var visit func(id models.ContractID, inherited bool, root bool)
	visit = func(id models.ContractID, inherited bool, root bool) {
		if visited[id] {
			return
		}
		visited[id] = true

		contract := table.Contract(id)
		strict := inherited
		if contract.OptedIn {
			strict = contract.Strict
		}

		out = append(out, AggregatedContract{
			ID:         id,
			InBaseList: covered[id],
			Root:       root,
			Strict:     strict,
		})

		for _, embedded := range contract.Embeds {
			visit(embedded, strict, false)
		}
	}

	for _, id := range target.Contracts {
		visit(id, table.Contract(id).Strict, true)
	}

	return out
}

// explicitClosure returns every contract covered by the target's assertions
func explicitClosure(table *models.SymbolTable, explicit []models.ContractID) map[models.ContractID]bool {
	covered := make(map[models.ContractID]bool)
	var walk func(id models.ContractID)
	walk = func(id models.ContractID) {
		if covered[id] {
			return
		}
		covered[id] = true
		for _, embedded := range table.Contract(id).Embeds {
			walk(embedded)
		}
	}
	for _, id := range explicit {
		walk(id)
	}
	return covered
}

// embedClosure returns every contract reachable from id through embedding,
// excluding id itself
func embedClosure(table *models.SymbolTable, id models.ContractID) map[models.ContractID]bool {
	reached := make(map[models.ContractID]bool)
	var walk func(models.ContractID)
	walk = func(current models.ContractID) {
		for _, embedded := range table.Contract(current).Embeds {
			if !reached[embedded] {
				reached[embedded] = true
				walk(embedded)
			}
		}
	}
	walk(id)
	return reached
}
