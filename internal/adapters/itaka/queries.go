package itaka

// GraphQL documents for the operator API. Field shapes follow what the
// extractors consume; anything extra the API returns is ignored.

const getDestinationsQuery = `
query GetDestinations($rateParams: RateParams!) {
  properties(rateParams: $rateParams) {
    destinationRegions {
      type
      value
      title
      parent
    }
  }
}`

const getRatesQuery = `
query GetRates($rateParams: RateParams!, $skip: Int!, $take: Int!, $order: String!) {
  rates(rateParams: $rateParams, skip: $skip, take: $take, order: $order) {
    ratesCount
    list {
      id
      supplierObjectId
      startDate
      endDate
      price { amount currency }
      room { title }
      segments {
        type
        meal { id title }
        content {
          title
          hotelRating
          destinations { country { id title } province { id title } }
          geolocation { lat lng }
        }
      }
    }
  }
}`

const getTransportDetailsQuery = `
query GetTransportDetails($rateParams: RateParams!, $id: String!) {
  rate(rateParams: $rateParams, id: $id) {
    segments {
      type
      carrier
      transportDetails {
        from { code city }
        to { code city }
        via { code city }
      }
    }
  }
}`

const getProductContentQuery = `
query GetProductContent($rateParams: RateParams!, $supplierObjectId: String!) {
  content(rateParams: $rateParams, supplierObjectId: $supplierObjectId) {
    newContent {
      destination { country { id title } }
      descriptions {
        id
        sections {
          title
          lists { items }
        }
      }
    }
  }
}`
