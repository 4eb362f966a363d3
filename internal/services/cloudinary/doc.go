// Package cloudinary uploads reel media to Cloudinary with signed requests.
//
// Remote URLs and data: URLs are both passed as the file field, so Cloudinary
// fetches remote media itself. A 404 from that fetch surfaces as an error
// whose StatusCode is 404, which the pipeline treats as a broken source.
//
// Audio goes through the video resource endpoint, as Cloudinary requires.
package cloudinary
