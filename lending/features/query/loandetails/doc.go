// Package loandetails reads one loan enriched with its book and copy.
package loandetails
