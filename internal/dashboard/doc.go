// Package dashboard turns a filter state and view options into the complete
// view model of the sales dashboard. Rendering is a pure function of the base
// dataset, the state and the options.
package dashboard
