//go:build !animdebug

package curve

const debugChecks = false
