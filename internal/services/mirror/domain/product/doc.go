// Package product derives display metadata for a product and a modifier
// selection: generated names, matched product instances, per option
// availability, completeness, and the price strings shown to customers.
package product
