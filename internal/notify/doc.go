// Package notify runs the local HTTP receiver for agent push notifications
// and suppresses duplicate task updates within a time window.
package notify
