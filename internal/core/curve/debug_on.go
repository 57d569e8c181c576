//go:build animdebug

package curve

const debugChecks = true
