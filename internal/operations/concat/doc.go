// Package concat implements server side object concatenation.
//
// A run has two atomicity tiers. Construction walks the listing, derives a
// target key per object and copies every matched object into a multipart
// upload part of its target; any failure there aborts every upload created
// so far and fails the run. Finalization then completes each target upload
// independently: a target that cannot be completed is aborted and its
// sources are kept out of cleanup, while its siblings carry on.
package concat
