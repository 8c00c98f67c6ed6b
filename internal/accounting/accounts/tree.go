package accounts

import "sort"

// ClassGroup partitions accounts into one PCG class for presentation.
type ClassGroup struct {
	Class    int
	Label    string
	Accounts []Account
}

// GroupByClass partitions accounts into the 8 PCG classes in ascending order.
// Empty classes are omitted.
func GroupByClass(accounts []Account) []ClassGroup {
	byClass := make(map[int][]Account)
	for _, a := range accounts {
		byClass[a.Class] = append(byClass[a.Class], a)
	}
	var groups []ClassGroup
	for class := 1; class <= 8; class++ {
		members, ok := byClass[class]
		if !ok {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Number < members[j].Number })
		groups = append(groups, ClassGroup{
			Class:    class,
			Label:    ClassLabel(class),
			Accounts: members,
		})
	}
	return groups
}

// TreeNode is an account with its resolved children.
type TreeNode struct {
	Account  Account
	Children []*TreeNode
}

// Tree is the resolved account hierarchy. Orphans lists parent numbers that
// were referenced but do not exist; the referencing accounts still appear as
// roots so nothing is hidden.
type Tree struct {
	Roots   []*TreeNode
	Orphans []string
}

// BuildTree builds the parent/child hierarchy by matching parent numbers.
func BuildTree(accounts []Account) Tree {
	nodes := make(map[string]*TreeNode, len(accounts))
	order := make([]string, 0, len(accounts))
	for _, a := range accounts {
		nodes[a.Number] = &TreeNode{Account: a}
		order = append(order, a.Number)
	}
	sort.Strings(order)

	tree := Tree{}
	orphanSet := make(map[string]struct{})
	for _, number := range order {
		node := nodes[number]
		parentNumber := node.Account.ParentNumber
		if parentNumber == nil || *parentNumber == "" {
			tree.Roots = append(tree.Roots, node)
			continue
		}
		parent, ok := nodes[*parentNumber]
		if !ok {
			orphanSet[*parentNumber] = struct{}{}
			tree.Roots = append(tree.Roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	for orphan := range orphanSet {
		tree.Orphans = append(tree.Orphans, orphan)
	}
	sort.Strings(tree.Orphans)
	return tree
}
