/*
go-posemetrics evaluates pose estimation results, such as pedestrian keypoints
predicted from camera images or lidar point clouds, against ground truth
annotations.

Predicted objects of a scene are first aligned to the ground truth objects with
the matcher package, which pads false negatives and false positives with
invisible placeholder objects.  The aligned batches are then fed to the
accumulators in the metrics package (MPJPE, PCK, OKS average precision, PEM and
keypoint visibility precision/recall), usually wired together by the config
package from one of the camera, laser or all keypoint presets.

The evaluate package runs the whole pipeline over many scenes using a pool of
accumulators, see the example subdirectory for a command line tool.
*/
package posemetrics
