package models

// Relation is an undirected family edge between two members. The edge
// set of a member, transitively closed, forms that member's relatives.
// The closure is maintained eagerly on insert; see the relations
// service.
type Relation struct {
	FirstID  int64
	SecondID int64
}
