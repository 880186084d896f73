// Package influxdb records data point values as InfluxDB time series.
//
// The client registers as a Core observer. Every numeric or boolean value
// change becomes a point in the "datapoint" measurement tagged with the
// data point id, so trends can be graphed outside the dashboard. Strings
// and calendar payloads are not written.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	c.AddObserver(client)
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Write errors arrive asynchronously through SetOnError.
package influxdb
