package models

import "fmt"

// TableBuilder assembles a SymbolTable. A builder is single use: Build hands
// its arenas to the table.
type TableBuilder struct {
	table *SymbolTable
}

// NewTableBuilder creates an empty builder
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{
		table: &SymbolTable{
			byName: make(map[string]ContractID),
		},
	}
}

// AddContract registers a contract and returns its id. A contract already
// registered under the same qualified name is returned unchanged.
func (b *TableBuilder) AddContract(c ContractDeclaration) ContractID {
	if id, ok := b.table.byName[c.Name]; ok {
		return id
	}
	c.ID = ContractID(len(b.table.contracts))
	c.Members = nil
	c.Embeds = nil
	b.table.contracts = append(b.table.contracts, c)
	b.table.byName[c.Name] = c.ID
	return c.ID
}

// LookupContract finds a contract registered so far
func (b *TableBuilder) LookupContract(name string) (ContractID, bool) {
	id, ok := b.table.byName[name]
	return id, ok
}

// Contract exposes a registered contract for in-place updates during collection
func (b *TableBuilder) Contract(id ContractID) *ContractDeclaration {
	return &b.table.contracts[id]
}

// AddMember appends a member to a contract in declaration order
func (b *TableBuilder) AddMember(contract ContractID, m MemberDeclaration) MemberID {
	m.ID = MemberID(len(b.table.members))
	m.Contract = contract
	if m.Accessibility == Exported && !isExported(m.Name) {
		m.Accessibility = Unexported
	}
	b.table.members = append(b.table.members, m)
	c := &b.table.contracts[contract]
	c.Members = append(c.Members, m.ID)
	return m.ID
}

// Embed records that contract embeds another
func (b *TableBuilder) Embed(contract, embedded ContractID) {
	c := &b.table.contracts[contract]
	for _, existing := range c.Embeds {
		if existing == embedded {
			return
		}
	}
	c.Embeds = append(c.Embeds, embedded)
}

// AddTarget registers a target and returns its id
func (b *TableBuilder) AddTarget(t TargetType) TargetID {
	t.ID = TargetID(len(b.table.targets))
	b.table.targets = append(b.table.targets, t)
	return t.ID
}

// AddIssue records a non-fatal observation
func (b *TableBuilder) AddIssue(issue Issue) {
	b.table.issues = append(b.table.issues, issue)
}

// Warnf records a warning about subject
func (b *TableBuilder) Warnf(subject string, format string, args ...interface{}) {
	b.AddIssue(Issue{
		Severity: SeverityWarning,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Build returns the finished table
func (b *TableBuilder) Build() *SymbolTable {
	table := b.table
	b.table = nil
	return table
}
