// Package keypoint confirms candidate image pairs geometrically.
//
// The pipeline detects FAST corners over a small image pyramid, assigns each
// corner an intensity-centroid orientation, extracts steered 256-bit binary
// descriptors, matches them with a brute-force two-nearest-neighbor Hamming
// search under Lowe's ratio test, and scores the surviving correspondences by
// the inlier count of a RANSAC-fitted homography. All randomness is seeded
// so the same pair of rasters always produces the same score.
package keypoint
