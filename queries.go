package kuaishou

// GraphQL operation names and query documents for the Kuaishou web API.
// The schema is the platform's contract; treat these strings as opaque and
// update them only when the platform changes its web client.

const opSearchPhoto = "visionSearchPhoto"

const querySearchPhoto = `
fragment photoContent on PhotoEntity {
  id
  duration
  caption
  likeCount
  viewCount
  commentCount
  coverUrl
  photoUrl
  timestamp
}

fragment feedContent on Feed {
  type
  author {
    id
    name
    headerUrl
    following
    headerUrls {
      url
    }
  }
  photo {
    ...photoContent
  }
}

query visionSearchPhoto($keyword: String, $pcursor: String, $searchSessionId: String, $page: String, $webPageArea: String) {
  visionSearchPhoto(keyword: $keyword, pcursor: $pcursor, searchSessionId: $searchSessionId, page: $page, webPageArea: $webPageArea) {
    result
    feeds {
      ...feedContent
    }
    searchSessionId
    pcursor
  }
}`

const opPhotoDetail = "photoDetail"

const queryPhotoDetail = `
query photoDetail($photoId: String) {
  photoDetail(photoId: $photoId) {
    photo {
      id
      duration
      caption
      likeCount
      viewCount
      commentCount
      coverUrl
      photoUrl
      timestamp
    }
    user {
      id
      name
    }
  }
}`

const opCommentList = "commentListQuery"

const queryCommentList = `
query commentListQuery($photoId: String, $pcursor: String) {
  visionCommentList(photoId: $photoId, pcursor: $pcursor) {
    commentCount
    pcursor
    rootComments {
      commentId
      authorId
      authorName
      content
      timestamp
      likedCount
      subCommentCount
      subCommentsPcursor
      subComments {
        commentId
        authorId
        authorName
        content
        timestamp
        likedCount
      }
    }
  }
}`

const opSubCommentList = "visionSubCommentList"

const querySubCommentList = `
query visionSubCommentList($photoId: String, $rootCommentId: String, $pcursor: String) {
  visionSubCommentList(photoId: $photoId, rootCommentId: $rootCommentId, pcursor: $pcursor) {
    pcursor
    subComments {
      commentId
      authorId
      authorName
      content
      timestamp
      likedCount
    }
  }
}`

const opUserProfile = "userProfile"

const queryUserProfile = `
query userProfile($userId: String) {
  userProfile(userId: $userId) {
    ownerCount {
      fan
      follow
      photo
    }
    profile {
      gender
      user {
        id
        name
        avatar
        isFollowing
        living
      }
    }
  }
}`

const opUserPhotos = "visionProfilePhotoList"

const queryUserPhotos = `
query visionProfilePhotoList($userId: String, $pcursor: String, $page: String) {
  visionProfilePhotoList(userId: $userId, pcursor: $pcursor, page: $page) {
    pcursor
    photoList {
      id
      duration
      caption
      likeCount
      viewCount
      commentCount
      coverUrl
      photoUrl
      timestamp
    }
  }
}`
