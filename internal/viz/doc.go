// Package viz renders terminal output for the lab: asciigraph traces
// for responses and residuals, a braille canvas for pole maps and root
// loci, and a bubbletea view for live loop tuning.
package viz
