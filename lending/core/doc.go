// Package core contains the lending domain: the domain events, the Loan, Copy, Member
// and Book projections derived from them, the lending Policy, the eligibility rules,
// the penalty calculation and the authorization predicate shared by all transitions.
//
// Everything in this package is pure. Functions take the event history and the current
// time as parameters and never read a clock, a database or a global.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
